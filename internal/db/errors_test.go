package db

import (
	"errors"
	"testing"

	"dzgamezone-be/internal/apperr"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: PgUniqueViolation}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
	assert.True(t, IsUniqueViolation(dup))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("noop", nil))

	cause := errors.New("connection refused")
	err := Wrap("get order", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "get order: connection refused")
}
