package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// HashPassword returns the lowercase hex SHA-256 digest of p.
// NOTE: unsalted. Kept as the default stored format; see Argon2Hasher.
func HashPassword(p string) string {
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest of p and compares it to digest in
// constant time.
func VerifyPassword(p, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(p)), []byte(digest)) == 1
}

const argon2Prefix = "$argon2id$"

var errBadArgon2Hash = errors.New("malformed argon2id hash")

// Argon2Hasher produces PHC strings:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

func DefaultArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
}

func (h Argon2Hasher) Hash(p string) (string, error) {
	salt := make([]byte, h.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(p), salt, h.Time, h.Memory, h.Threads, h.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s", argon2Prefix, argon2.Version,
		h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify checks p against a PHC string, using the parameters stored in it.
func (h Argon2Hasher) Verify(p, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errBadArgon2Hash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, errBadArgon2Hash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, errBadArgon2Hash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errBadArgon2Hash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return false, errBadArgon2Hash
	}

	got := argon2.IDKey([]byte(p), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(got, key) == 1, nil
}

// PasswordHasher hashes new passwords with the configured scheme and
// verifies stored hashes of either format.
type PasswordHasher struct {
	argon2 bool
	a2     Argon2Hasher
}

// NewPasswordHasher returns a hasher for "sha256" or "argon2id". Any other
// value falls back to sha256.
func NewPasswordHasher(scheme string) *PasswordHasher {
	return &PasswordHasher{argon2: scheme == "argon2id", a2: DefaultArgon2Hasher()}
}

func (h *PasswordHasher) Hash(p string) (string, error) {
	if h.argon2 {
		return h.a2.Hash(p)
	}
	return HashPassword(p), nil
}

func (h *PasswordHasher) Verify(p, stored string) bool {
	if strings.HasPrefix(stored, argon2Prefix) {
		ok, err := h.a2.Verify(p, stored)
		return err == nil && ok
	}
	return VerifyPassword(p, stored)
}

// NeedsUpgrade reports whether stored should be re-hashed after a
// successful login. Only true when argon2id is configured and stored is
// a legacy digest.
func (h *PasswordHasher) NeedsUpgrade(stored string) bool {
	return h.argon2 && !strings.HasPrefix(stored, argon2Prefix)
}
