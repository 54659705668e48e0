package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  int
		expectErr bool
	}{
		{
			name:     "Midnight",
			raw:      "00:00",
			expected: 0,
		},
		{
			name:     "Morning",
			raw:      "09:30",
			expected: 570,
		},
		{
			name:     "Last minute of day",
			raw:      "23:59",
			expected: 1439,
		},
		{
			name:     "Surrounding whitespace",
			raw:      " 08:00 ",
			expected: 480,
		},
		{
			name:      "Hour out of range",
			raw:       "24:00",
			expectErr: true,
		},
		{
			name:      "Minute out of range",
			raw:       "12:60",
			expectErr: true,
		},
		{
			name:      "Missing zero padding",
			raw:       "9:30",
			expectErr: true,
		},
		{
			name:      "Not a time at all",
			raw:       "noonish",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Clock(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClockRange(t *testing.T) {
	s, e, err := ClockRange("09:00", "11:30")
	assert.NoError(t, err)
	assert.Equal(t, 540, s)
	assert.Equal(t, 690, e)

	_, _, err = ClockRange("11:30", "09:00")
	assert.Error(t, err, "reversed range must be rejected")

	_, _, err = ClockRange("10:00", "10:00")
	assert.Error(t, err, "zero-length range must be rejected")
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "23:59", FormatClock(1439))
}
