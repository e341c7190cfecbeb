// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/accounts/internal/user"
	"github.com/holomush/accounts/internal/user/postgres"
)

func newInput(username, email string) user.CreateInput {
	hash := "$2a$10$integrationhashintegrationhashintegrationhash"
	website := "hildegard.org"
	return user.CreateInput{
		Name:     "Leanne Graham",
		Username: username,
		Email:    email,
		Password: &hash,
		Address: user.Address{
			Street: "Kulas Light", Suite: "Apt. 556", City: "Gwenborough", Zipcode: "92998-3874",
			Geo: user.Geo{Lat: "-37.3159", Lng: "81.1496"},
		},
		Phone:   "1-770-736-8031 x56442",
		Website: &website,
		Company: user.Company{Name: "Romaguera-Crona", CatchPhrase: "Multi-layered", BS: "harness"},
	}
}

var _ = Describe("User directory on PostgreSQL", func() {
	var (
		ctx context.Context
		svc *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		_, err := testPool.Exec(ctx, "TRUNCATE users RESTART IDENTITY")
		Expect(err).NotTo(HaveOccurred())
		svc = user.NewService(postgres.NewRepository(testPool), nil)
	})

	It("round-trips every field including embedded values", func() {
		created, err := svc.CreateUser(ctx, newInput("bret", "sincere@april.biz"))
		Expect(err).NotTo(HaveOccurred())
		Expect(created.ID).To(BeNumerically(">", 0))

		got, err := svc.FindUserByID(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Address).To(Equal(created.Address))
		Expect(got.Company).To(Equal(created.Company))
		Expect(*got.Website).To(Equal("hildegard.org"))
		Expect(*got.PasswordHash).To(Equal(*created.PasswordHash))
	})

	It("stores users without a password as NULL", func() {
		in := newInput("antonette", "shanna@melissa.tv")
		in.Password = nil
		created, err := svc.CreateUser(ctx, in)
		Expect(err).NotTo(HaveOccurred())

		got, err := svc.FindUserByID(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.HasPassword()).To(BeFalse())
	})

	It("rejects duplicate email and username", func() {
		_, err := svc.CreateUser(ctx, newInput("a1", "a@x.com"))
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.CreateUser(ctx, newInput("a2", "a@x.com"))
		Expect(err).To(MatchError("Email already exists"))

		_, err = svc.CreateUser(ctx, newInput("a1", "b@x.com"))
		Expect(err).To(MatchError("Username already exists"))
	})

	It("lets the unique constraint decide concurrent creates", func() {
		const writers = 6
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				_, err := svc.CreateUser(ctx, newInput("race", "race@x.com"))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
			}
		}
		Expect(succeeded).To(Equal(1))

		all, err := svc.FindAllUsers(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(1))
	})

	It("patches only supplied fields and allows own email", func() {
		a, err := svc.CreateUser(ctx, newInput("a1", "a@x.com"))
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.CreateUser(ctx, newInput("b1", "b@x.com"))
		Expect(err).NotTo(HaveOccurred())

		phone := "555-0100"
		ownEmail := "a@x.com"
		updated, err := svc.UpdateUser(ctx, a.ID, user.Patch{Phone: &phone, Email: &ownEmail})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Phone).To(Equal("555-0100"))
		Expect(updated.Name).To(Equal(a.Name))

		taken := "b@x.com"
		_, err = svc.UpdateUser(ctx, a.ID, user.Patch{Email: &taken})
		Expect(err).To(MatchError("Email already in use by another account."))
	})

	It("removes users and reports missing ids", func() {
		a, err := svc.CreateUser(ctx, newInput("a1", "a@x.com"))
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.RemoveUser(ctx, a.ID)).To(Succeed())
		_, err = svc.FindUserByID(ctx, a.ID)
		Expect(err).To(HaveOccurred())
		Expect(svc.RemoveUser(ctx, a.ID)).NotTo(Succeed())
	})

	It("returns nil on lookup misses", func() {
		u, err := svc.FindByEmail(ctx, "nobody@x.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).To(BeNil())

		u, err = svc.FindByUsername(ctx, "nobody")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).To(BeNil())
	})
})
