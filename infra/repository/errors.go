package repository

import (
	"errors"

	"github.com/amirasaad/axeria/pkg/domain"
	"gorm.io/gorm"
)

// gormErrors is checked in order; the first match anywhere in the chain wins.
var gormErrors = []struct {
	gorm   error
	domain error
}{
	{gorm.ErrRecordNotFound, domain.ErrNotFound},
	{gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
	{gorm.ErrForeignKeyViolated, domain.ErrInUse},
}

// MapGormErrorToDomain turns the translated gorm errors into the domain
// sentinels the services and handlers switch on. The driver error is
// dropped so constraint names never reach an API response. Anything
// unrecognised is returned as is.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range gormErrors {
		if errors.Is(err, m.gorm) {
			return m.domain
		}
	}
	return err
}

// WrapError runs op and maps its error.
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
