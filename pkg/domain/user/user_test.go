package user

import (
	"testing"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()
	u, err := NewUser("alice", "Alice@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, RoleTrader, u.Role)
	assert.True(t, u.Active)
	assert.Equal(t, "en", u.Language)
	assert.True(t, utils.CheckPasswordHash("secret1", u.Password))
	assert.True(t, u.Balances.CurrentDeposit.IsZero())
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, username, email, password string
	}{
		{"empty username", "", "a@b.com", "secret1"},
		{"bad email", "bob", "not-an-email", "secret1"},
		{"short password", "bob", "b@b.com", "123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tc.username, tc.email, tc.password)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCanLogin(t *testing.T) {
	t.Parallel()
	u := &User{Active: true}
	assert.NoError(t, u.CanLogin())

	u.Blocked = true
	assert.ErrorIs(t, u.CanLogin(), ErrUserBlocked)

	u.Blocked = false
	u.Active = false
	assert.ErrorIs(t, u.CanLogin(), ErrUserInactive)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "bob", (&User{Username: "bob"}).DisplayName())
	assert.Equal(t, "Bob Ray", (&User{Username: "bob", FirstName: "Bob", LastName: "Ray"}).DisplayName())
	assert.Equal(t, "Robert", (&User{Username: "bob", FullName: "Robert"}).DisplayName())
}
