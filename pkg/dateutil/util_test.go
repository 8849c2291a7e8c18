package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrentWeek(t *testing.T) {
	// Friday, 31 October 2025.
	friday := time.Date(2025, time.October, 31, 21, 13, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.October, 27, 0, 0, 0, 0, time.UTC), CurrentWeek(friday))

	// Sunday belongs to the week started on the previous Monday.
	sunday := time.Date(2025, time.November, 2, 1, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.October, 27, 0, 0, 0, 0, time.UTC), CurrentWeek(sunday))

	require.Equal(t, time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC), LastWeek(friday))
}

func TestCurrentMonth(t *testing.T) {
	d := time.Date(2025, time.January, 15, 8, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), CurrentMonth(d))
	require.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), LastMonth(d))
}
