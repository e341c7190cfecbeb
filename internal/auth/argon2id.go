// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

const argon2idPrefix = "$argon2id$"

// Argon2Params are the argon2id cost settings. Zero fields take the
// DefaultArgon2Params value.
type Argon2Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params follows the OWASP argon2id recommendation.
var DefaultArgon2Params = Argon2Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

func (p Argon2Params) withDefaults() Argon2Params {
	d := DefaultArgon2Params
	if p.Time == 0 {
		p.Time = d.Time
	}
	if p.Memory == 0 {
		p.Memory = d.Memory
	}
	if p.Threads == 0 {
		p.Threads = d.Threads
	}
	if p.SaltLen == 0 {
		p.SaltLen = d.SaltLen
	}
	if p.KeyLen == 0 {
		p.KeyLen = d.KeyLen
	}
	return p
}

// Argon2idHasher hashes with argon2id and encodes the result in PHC
// string format.
type Argon2idHasher struct {
	params Argon2Params
}

// NewArgon2idHasher creates an Argon2idHasher using params.
func NewArgon2idHasher(params Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: params.withDefaults()}
}

// Hash returns a salted argon2id hash of password in PHC format.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code(CodeHashFailed).With("step", "salt").Wrap(err)
	}
	p := h.params
	return phcHash{
		params: p,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen),
	}.String(), nil
}

// Verify checks password against an argon2id or bcrypt hash.
func (h *Argon2idHasher) Verify(password, hash string) (bool, error) {
	if isBcryptHash(hash) {
		return verifyBcrypt(password, hash)
	}
	return verifyArgon2id(password, hash)
}

// NeedsUpgrade is true for non-argon2id hashes and for argon2id hashes
// computed with less time or memory than this hasher uses.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	parsed, err := parsePHC(hash)
	if err != nil {
		return true
	}
	return parsed.params.Time < h.params.Time || parsed.params.Memory < h.params.Memory
}

func isArgon2idHash(hash string) bool {
	return strings.HasPrefix(hash, argon2idPrefix)
}

// phcHash is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type phcHash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func (h phcHash) String() string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

func parsePHC(encoded string) (phcHash, error) {
	var out phcHash
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return out, invalidHash("invalid hash format")
	}
	if fields[1] != "argon2id" {
		return out, invalidHash("unsupported hash algorithm: %s", fields[1])
	}

	version, err := strconv.Atoi(strings.TrimPrefix(fields[2], "v="))
	if err != nil || !strings.HasPrefix(fields[2], "v=") {
		return out, invalidHash("invalid version field %q", fields[2])
	}
	if version != argon2.Version {
		return out, invalidHash("unsupported argon2 version %d", version)
	}

	var threads uint32
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &out.params.Memory, &out.params.Time, &threads); err != nil {
		return out, invalidHash("invalid parameters %q", fields[3])
	}
	if threads == 0 || threads > 255 {
		return out, invalidHash("threads value %d out of range", threads)
	}
	out.params.Threads = uint8(threads)

	if out.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return out, invalidHash("invalid salt encoding")
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return out, invalidHash("invalid key encoding")
	}
	if len(out.key) == 0 {
		return out, invalidHash("empty key")
	}
	out.params.SaltLen = uint32(len(out.salt))
	out.params.KeyLen = uint32(len(out.key))
	return out, nil
}

func verifyArgon2id(password, encoded string) (bool, error) {
	stored, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	p := stored.params
	computed := argon2.IDKey([]byte(password), stored.salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(computed, stored.key) == 1, nil
}

func invalidHash(format string, args ...any) error {
	return oops.Code(CodeInvalidHash).Errorf(format, args...)
}
