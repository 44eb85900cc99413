package db

import (
	"errors"
	"fmt"

	"dzgamezone-be/internal/apperr"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
)

// PgUniqueViolation is the SQLSTATE raised by unique constraints.
const PgUniqueViolation = "23505"

var ErrStoreUnavailable = apperr.Dependency("database error", nil)

// IsUniqueViolation reports a duplicate key from either store.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == PgUniqueViolation
	}

	return mongo.IsDuplicateKeyError(err)
}

// Wrap tags a store failure as a dependency fault, keeping op for the logs.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return ErrStoreUnavailable.Wrap(fmt.Errorf("%s: %w", op, err))
}
