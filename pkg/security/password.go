package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash is returned when a stored hash does not match the expected
// argon2id encoding.
var ErrInvalidHash = errors.New("invalid password hash format")

type argonParams struct {
	memoryKB    uint32
	time        uint32
	parallelism uint8
	saltLen     int
	keyLen      uint32
}

// Hasher hashes and verifies passwords using argon2id.
type Hasher struct {
	params argonParams
}

// NewHasher builds a Hasher from configuration, applying sane floors to the
// tunables so misconfiguration cannot weaken hashing below minimums.
func NewHasher(cfg config.PasswordConfig) *Hasher {
	p := argonParams{
		memoryKB:    uint32(cfg.ArgonMemoryKB),
		time:        uint32(cfg.ArgonTime),
		parallelism: uint8(cfg.ArgonParallelism),
		saltLen:     cfg.ArgonSaltLen,
		keyLen:      uint32(cfg.ArgonKeyLen),
	}
	if p.memoryKB < 8192 {
		p.memoryKB = 8192
	}
	if p.time < 1 {
		p.time = 1
	}
	if p.parallelism < 1 {
		p.parallelism = 1
	}
	if p.saltLen < 8 {
		p.saltLen = 8
	}
	if p.keyLen < 16 {
		p.keyLen = 16
	}
	return &Hasher{params: p}
}

// Hash derives an argon2id digest and returns it in the standard encoded form.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, h.params.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.time, h.params.memoryKB, h.params.parallelism, h.params.keyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memoryKB,
		h.params.time,
		h.params.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether the password matches the encoded hash. The
// comparison is constant time over the derived keys.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memoryKB, params.parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(key, candidate) == 1 {
		return true, nil
	}
	return false, nil
}

func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argonParams{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return argonParams{}, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var params argonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memoryKB, &params.time, &params.parallelism); err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	return params, salt, key, nil
}
