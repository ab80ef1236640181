package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesUniqueSortedIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[ID]struct{})
	var prev ID
	for range 100 {
		id := New()
		require.Len(t, id.String(), 26)

		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}

		if prev != Zero {
			require.LessOrEqual(t, prev.String(), id.String())
		}
		prev = id
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse("  " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	id := New()
	require.WithinDuration(t, time.Now().UTC(), id.Time(), 2*time.Second)
	require.True(t, Zero.Time().IsZero())
}
