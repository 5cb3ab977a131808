package idx_test

import (
	"testing"
	"time"

	"github.com/quarterdeck-labs/quarterdeck/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewProducesUniqueSortedIDs(t *testing.T) {
	t.Parallel()

	const n = 1000
	seen := make(map[idx.ID]struct{}, n)

	var prev idx.ID
	for range n {
		id := idx.New()
		require.False(t, id.IsZero())

		_, dup := seen[id]
		require.False(t, dup, "duplicate ID generated: %s", id)
		seen[id] = struct{}{}

		if !prev.IsZero() {
			require.Less(t, prev.String(), id.String(), "IDs must be monotonic")
		}
		prev = id
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := idx.New()

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = idx.Parse("")
	require.ErrorIs(t, err, idx.ErrInvalid)

	_, err = idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := idx.NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}
