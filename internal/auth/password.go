package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultSaltLength = 10
	DefaultIterations = 600000

	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// Hasher produces salted PBKDF2-SHA256 hashes encoded as
// "pbkdf2:sha256:<iterations>$<salt>$<hex digest>".
type Hasher struct {
	SaltLength int
	Iterations int
}

func NewHasher(saltLength, iterations int) Hasher {
	if saltLength <= 0 {
		saltLength = DefaultSaltLength
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return Hasher{SaltLength: saltLength, Iterations: iterations}
}

func (h Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt, err := genSalt(h.SaltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	digest := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.Iterations, salt, hex.EncodeToString(digest)), nil
}

// Check reports whether password matches hash. Besides the PBKDF2 format it
// accepts bcrypt hashes.
func (h Hasher) Check(hash, password string) bool {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}

	method, rest, ok := strings.Cut(hash, "$")
	if !ok {
		return false
	}
	salt, want, ok := strings.Cut(rest, "$")
	if !ok {
		return false
	}
	parts := strings.Split(method, ":")
	if len(parts) < 2 || parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return false
	}
	iterations := DefaultIterations
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return false
		}
		iterations = n
	}
	wantBytes, err := hex.DecodeString(want)
	if err != nil || len(wantBytes) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(wantBytes), sha256.New)
	return subtle.ConstantTimeCompare(got, wantBytes) == 1
}

func genSalt(n int) (string, error) {
	alphabet := big.NewInt(int64(len(saltChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", err
		}
		b[i] = saltChars[idx.Int64()]
	}
	return string(b), nil
}
