package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestEmailConflictMapsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	assert.ErrorIs(t, emailConflict(dup), ErrEmailInUse)

	other := errors.New("connection reset")
	assert.Equal(t, other, emailConflict(other))
	assert.NoError(t, emailConflict(nil))
}
