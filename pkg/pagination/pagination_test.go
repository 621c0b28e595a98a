package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{At: time.Date(2026, 3, 1, 10, 30, 0, 123, time.UTC), ID: uuid.New()}
	got, err := ParseCursor(EncodeCursor(want))
	require.NoError(t, err)
	require.True(t, want.At.Equal(got.At))
	require.Equal(t, want.ID, got.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	c, err := ParseCursor("")
	require.NoError(t, err)
	require.Nil(t, c)

	_, err = ParseCursor("not base64 !!")
	require.Error(t, err)

	_, err = ParseCursor("bm8tc2VwYXJhdG9y")
	require.Error(t, err)
}

func TestLimits(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(500))
	require.Equal(t, 6, LimitWithBuffer(5))

	rows, more := Trim([]int{1, 2, 3, 4, 5, 6}, 5)
	require.True(t, more)
	require.Len(t, rows, 5)

	rows, more = Trim([]int{1, 2}, 5)
	require.False(t, more)
	require.Len(t, rows, 2)
}
