// Package gormerr maps gorm and driver errors onto domain errors so callers
// above the infrastructure layer never see database types.
package gormerr

import (
	"errors"

	"github.com/demonyhq/demony/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors.
// Traverses the error chain to find GORM errors and maps them to appropriate domain errors.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		case errors.Is(currentErr, gorm.ErrCheckConstraintViolated):
			return domain.ErrValidation
		}
		currentErr = errors.Unwrap(currentErr)
	}

	return err
}

// NotFoundAs maps a missing record onto a more specific domain error.
func NotFoundAs(err error, target error) error {
	mapped := MapGormErrorToDomain(err)
	if errors.Is(mapped, domain.ErrNotFound) {
		return target
	}
	return mapped
}

// WrapError wraps a GORM operation and automatically maps errors.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(user).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
