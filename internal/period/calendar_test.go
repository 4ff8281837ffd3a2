package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalendar(t *testing.T) {
	tests := []struct {
		name     string
		tz       string
		locale   string
		weekday  string
		wantLoc  string
		wantWeek time.Weekday
		wantErr  bool
	}{
		{name: "defaults", wantLoc: "UTC", wantWeek: time.Monday},
		{name: "us locale starts on sunday", locale: "en-US", wantLoc: "UTC", wantWeek: time.Sunday},
		{name: "italian locale starts on monday", tz: "Europe/Rome", locale: "it-IT", wantLoc: "Europe/Rome", wantWeek: time.Monday},
		{name: "explicit weekday wins", locale: "en-US", weekday: "monday", wantLoc: "UTC", wantWeek: time.Monday},
		{name: "short weekday", weekday: "sat", wantLoc: "UTC", wantWeek: time.Saturday},
		{name: "bad timezone", tz: "Mars/Olympus", wantErr: true},
		{name: "bad locale", locale: "!!", wantErr: true},
		{name: "bad weekday", weekday: "someday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := NewCalendar(tt.tz, tt.locale, tt.weekday)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLoc, cal.Location.String())
			assert.Equal(t, tt.wantWeek, cal.FirstWeekday)
		})
	}
}

func TestZeroCalendarFallsBackToUTC(t *testing.T) {
	calc := NewCalculator(Calendar{})
	got := calc.Start(time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC), "daily")
	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), got)
}
