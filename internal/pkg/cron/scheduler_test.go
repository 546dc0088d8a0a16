package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilNextHour(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("PKT", 5*3600)

	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Duration
	}{
		{
			name: "later the same day",
			now:  time.Date(2025, 3, 10, 23, 30, 0, 0, loc),
			hour: 2,
			want: 2*time.Hour + 30*time.Minute,
		},
		{
			name: "hour already passed rolls to tomorrow",
			now:  time.Date(2025, 3, 10, 3, 0, 0, 0, loc),
			hour: 2,
			want: 23 * time.Hour,
		},
		{
			name: "exactly at the hour waits a full day",
			now:  time.Date(2025, 3, 10, 2, 0, 0, 0, loc),
			hour: 2,
			want: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, untilNextHour(tt.now, tt.hour))
		})
	}
}

func TestScheduler_AddDailyJob(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	s.AddDailyJob("nightly", 2, func(_ context.Context) error { return nil })

	require.Len(t, s.jobs, 1)
	require.NotNil(t, s.jobs[0].AtHour)
	assert.Equal(t, 2, *s.jobs[0].AtHour)
}

func TestScheduler_RunOnce(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	ran := 0
	s.AddJob("tick", time.Hour, func(_ context.Context) error {
		ran++
		return nil
	})
	s.AddDailyJob("nightly", 2, func(_ context.Context) error {
		ran++
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, 2, ran)
}
