package repository

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestSeatsUnavailableErrorMessage(t *testing.T) {
	err := &SeatsUnavailableError{Seats: []string{"A2", "A3", "C9"}}
	assert.Equal(t, "The following seats are not available: A2, A3, C9", err.Error())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("seats", "Please add at least one seat")
	assert.Equal(t, "Validation failed", err.Error())
	assert.Equal(t, "Please add at least one seat", err.Errors["seats"])
}

func TestDuplicateFieldError(t *testing.T) {
	err := &DuplicateFieldError{Field: "email"}
	assert.Contains(t, err.Error(), "email")
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicate(nil))
}
