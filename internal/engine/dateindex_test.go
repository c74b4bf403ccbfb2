package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIndex_KnownPositions pins the anchor points of the 366-slot ring.
func TestIndex_KnownPositions(t *testing.T) {
	tests := []struct {
		name     string
		month    int
		day      int
		expected int
	}{
		{"first day of year", 1, 1, 1},
		{"end of January", 1, 31, 31},
		{"leap slot", 2, 29, 60},
		{"day after leap slot", 3, 1, 61},
		{"last day of year", 12, 31, 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := Index(tt.month, tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, idx)
		})
	}
}

// TestIndex_InjectiveAndMonotonic walks every valid (month, day) pair and
// verifies the index is strictly increasing in calendar order, which gives
// injectivity for free.
func TestIndex_InjectiveAndMonotonic(t *testing.T) {
	prev := 0
	for m := 1; m <= 12; m++ {
		for d := 1; d <= monthDays[m]; d++ {
			idx, err := Index(m, d)
			require.NoError(t, err)
			assert.Equal(t, prev+1, idx, "index must advance by exactly one per calendar day (%d-%d)", m, d)
			prev = idx
		}
	}
	assert.Equal(t, 366, prev, "the ring must contain exactly 366 slots")
}

func TestIndex_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		month int
		day   int
	}{
		{"month zero", 0, 1},
		{"month thirteen", 13, 1},
		{"day zero", 1, 0},
		{"February 30th", 2, 30},
		{"April 31st", 4, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Index(tt.month, tt.day)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestIndexOfTime(t *testing.T) {
	assert.Equal(t, 1, IndexOfTime(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 61, IndexOfTime(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	// 2024 is a leap year, so Feb 29 exists and lands on the reserved slot.
	assert.Equal(t, 60, IndexOfTime(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestWindowScan_Length(t *testing.T) {
	scan := NewWindowScan(180, 8, 22)

	count := 0
	for {
		idx, ok := scan.Next()
		if !ok {
			break
		}
		count++
		assert.GreaterOrEqual(t, idx, 1)
		assert.LessOrEqual(t, idx, 366)
	}
	assert.Equal(t, 22, count, "scan must yield exactly daysTotal indices")

	_, ok := scan.Next()
	assert.False(t, ok, "a spent scan must stay spent")
}

func TestWindowScan_WrapBeforeYearStart(t *testing.T) {
	// center 5, 8 back: start is -3, which wraps to 366 - 3 = 363.
	scan := NewWindowScan(5, 8, 22)

	var got []int
	for {
		idx, ok := scan.Next()
		if !ok {
			break
		}
		got = append(got, idx)
	}

	assert.Equal(t, 363, got[0])
	assert.Equal(t, []int{363, 364, 365, 366, 1, 2, 3}, got[:7], "scan must cross the year boundary seamlessly")
	assert.Len(t, got, 22)
	assert.Equal(t, 18, got[21])
}

func TestWindowScan_StartExactlyZeroWrapsToLastSlot(t *testing.T) {
	// center == daysBefore puts the start on slot 366, not slot 1.
	scan := NewWindowScan(8, 8, 3)

	first, ok := scan.Next()
	require.True(t, ok)
	assert.Equal(t, 366, first)

	second, _ := scan.Next()
	assert.Equal(t, 1, second)
}

func TestWindowScan_WrapAtYearEnd(t *testing.T) {
	// A December center must spill into January.
	center, err := Index(12, 28) // slot 363
	require.NoError(t, err)

	scan := NewWindowScan(center, 8, 22)
	var got []int
	for {
		idx, ok := scan.Next()
		if !ok {
			break
		}
		got = append(got, idx)
	}

	assert.Equal(t, 355, got[0])
	assert.Contains(t, got, 366)
	assert.Contains(t, got, 1)
	assert.Equal(t, 10, got[21], "the scan should end 14 days into January")
}
