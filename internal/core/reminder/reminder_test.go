package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	r := New("write the report", "", "")

	assert.Equal(t, UrgencyToday, r.Urgency)
	assert.Equal(t, ListActual, r.ListType)
	assert.Zero(t, r.ID)
	assert.False(t, r.IsCompleted)
	assert.Nil(t, r.CompletedAt)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestNew_ExplicitValues(t *testing.T) {
	r := New("someday", UrgencyWhenever, ListBacklog)

	assert.Equal(t, UrgencyWhenever, r.Urgency)
	assert.Equal(t, ListBacklog, r.ListType)
}

func TestTempID(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	id := TempID(now)

	assert.True(t, IsTemp(id))
	assert.Equal(t, -now.UnixMilli(), id)
	assert.False(t, IsTemp(1))
	assert.False(t, IsTemp(0))
}

func TestTouched(t *testing.T) {
	created := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	r := Reminder{CreatedAt: created}
	assert.Equal(t, created, r.Touched())

	r.CompletedAt = &completed
	assert.Equal(t, completed, r.Touched())
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("do the thing"))
	assert.ErrorIs(t, ValidateMessage(""), ErrEmptyMessage)
	assert.ErrorIs(t, ValidateMessage("   \t"), ErrEmptyMessage)
}

func TestParseUrgency(t *testing.T) {
	u, err := ParseUrgency(" Today ")
	require.NoError(t, err)
	assert.Equal(t, UrgencyToday, u)

	_, err = ParseUrgency("yesterday")
	assert.Error(t, err)
}

func TestParseListType(t *testing.T) {
	l, err := ParseListType("BACKLOG")
	require.NoError(t, err)
	assert.Equal(t, ListBacklog, l)

	_, err = ParseListType("icebox")
	assert.Error(t, err)
}
