package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewHasher
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

const argon2idPrefix = "$argon2id$"

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Verify returns (true, nil) on match, (false, nil) on mismatch and an
	// error if hash is malformed.
	Verify(password, hash string) (bool, error)
}

// NewHasher returns the named hasher. Passwords stored by either algorithm
// remain verifiable whichever is selected for new hashes.
func NewHasher(name string, bcryptCost int) (PasswordHasher, error) {
	bc := NewBcryptHasher(bcryptCost)
	switch name {
	case "", HasherBcrypt:
		return &dispatchHasher{primary: bc, bcrypt: bc, argon2id: DefaultArgon2idHasher()}, nil
	case HasherArgon2id:
		a := DefaultArgon2idHasher()
		return &dispatchHasher{primary: a, bcrypt: bc, argon2id: a}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", name)
}

// dispatchHasher hashes with primary and verifies by the stored hash's format
type dispatchHasher struct {
	primary  PasswordHasher
	bcrypt   PasswordHasher
	argon2id PasswordHasher
}

func (h *dispatchHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *dispatchHasher) Verify(password, hash string) (bool, error) {
	if strings.HasPrefix(hash, argon2idPrefix) {
		return h.argon2id.Verify(password, hash)
	}
	return h.bcrypt.Verify(password, hash)
}

// BcryptHasher implements PasswordHasher using bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher. A zero cost uses bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, oops.Code("INVALID_PASSWORD_HASH").Wrap(err)
}

// Argon2idParams tunes the argon2id cost
type Argon2idParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// Argon2idHasher implements PasswordHasher using argon2id, encoded in PHC
// string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct {
	params Argon2idParams
}

// NewArgon2idHasher creates an argon2id hasher with params
func NewArgon2idHasher(params Argon2idParams) *Argon2idHasher {
	return &Argon2idHasher{params: params}
}

// DefaultArgon2idHasher uses the OWASP recommended parameters
func DefaultArgon2idHasher() *Argon2idHasher {
	return NewArgon2idHasher(Argon2idParams{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	})
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("PASSWORD_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, oops.Code("INVALID_PASSWORD_HASH").Errorf("not an argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("INVALID_PASSWORD_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return false, oops.Code("INVALID_PASSWORD_HASH").Errorf("unsupported argon2 version %d", version)
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, oops.Code("INVALID_PASSWORD_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("INVALID_PASSWORD_HASH").Wrap(err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("INVALID_PASSWORD_HASH").Wrap(err)
	}
	if len(want) == 0 || len(want) > 1024 {
		return false, oops.Code("INVALID_PASSWORD_HASH").Errorf("bad key length %d", len(want))
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
