package service

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

// PasswordHasher wraps bcrypt. bcrypt salts every hash and its comparison is
// constant-time with respect to the hash contents.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range", ErrMisconfigured, cost)
	}
	// Compared against when the account does not exist, so a miss costs the
	// same as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte("travelagent-unknown-user"), cost)
	if err != nil {
		return nil, err
	}
	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

func ParseBcryptCost(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultBcryptCost, nil
	}
	cost, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid BCRYPT_COST", ErrMisconfigured)
	}
	return cost, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. An empty hash (federated-only
// account) never matches but still pays for one comparison.
func (h *PasswordHasher) Compare(hash, password string) bool {
	if hash == "" {
		h.CompareDummy(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *PasswordHasher) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
