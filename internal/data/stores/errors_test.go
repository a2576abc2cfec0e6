package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(fmt.Errorf("scan row: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("boom")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsBusyError(t *testing.T) {
	assert.False(t, IsBusyError(nil))
	assert.False(t, IsBusyError(errors.New("boom")))
	assert.False(t, IsBusyError(sql.ErrNoRows))
}
