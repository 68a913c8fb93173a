package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	other := errors.New("connection reset")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, domain.ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
		{"foreign key", gorm.ErrForeignKeyViolated, domain.ErrInUse},
		{"wrapped", fmt.Errorf("create plan: %w", gorm.ErrDuplicatedKey), domain.ErrAlreadyExists},
		{"joined", errors.Join(other, gorm.ErrForeignKeyViolated), domain.ErrInUse},
		{"first mapping wins", errors.Join(gorm.ErrDuplicatedKey, gorm.ErrRecordNotFound), domain.ErrNotFound},
		{"unmapped passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapGormErrorToDomain(tt.in))
		})
	}
}

func TestWrapErrorHidesDriverDetail(t *testing.T) {
	t.Parallel()

	err := WrapError(func() error {
		return fmt.Errorf("ERROR: duplicate key value violates unique constraint \"users_email_key\": %w", gorm.ErrDuplicatedKey)
	})
	assert.Same(t, domain.ErrAlreadyExists, err)
	assert.NotContains(t, err.Error(), "users_email_key")

	assert.NoError(t, WrapError(func() error { return nil }))
}
