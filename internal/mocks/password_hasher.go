package mocks

import (
	"strings"

	"github.com/phrazzld/tasker-api/internal/service/auth"
)

const plainHashPrefix = "plain:"

// MockPasswordHasher implements auth.PasswordHasher with a reversible
// encoding so tests avoid bcrypt's cost.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hash, password string) error
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return plainHashPrefix + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hash, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hash, password)
	}
	if !strings.HasPrefix(hash, plainHashPrefix) || strings.TrimPrefix(hash, plainHashPrefix) != password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
