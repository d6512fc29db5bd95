package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	SendDailyReportFunc func(ctx context.Context, day time.Time) error

	Days []time.Time
}

func (f *fakeReporter) SendDailyReport(ctx context.Context, day time.Time) error {
	f.Days = append(f.Days, day)
	if f.SendDailyReportFunc != nil {
		return f.SendDailyReportFunc(ctx, day)
	}
	return nil
}

func TestRunDailyReport(t *testing.T) {
	day := time.Date(2026, 10, 15, 21, 0, 0, 0, time.Local)
	reporter := &fakeReporter{SendDailyReportFunc: func(ctx context.Context, _ time.Time) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "report runs with a timeout")
		return nil
	}}

	runDailyReport(reporter, day, zerolog.Nop())

	require.Len(t, reporter.Days, 1)
	assert.Equal(t, day, reporter.Days[0])
}

func TestRunDailyReport_ErrorIsLogged(t *testing.T) {
	reporter := &fakeReporter{SendDailyReportFunc: func(context.Context, time.Time) error {
		return errors.New("smtp down")
	}}

	assert.NotPanics(t, func() {
		runDailyReport(reporter, time.Now(), zerolog.Nop())
	})
	assert.Len(t, reporter.Days, 1)
}

func TestScheduleDailyReport(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	assert.NoError(t, s.ScheduleDailyReport("21:00", &fakeReporter{}))
	assert.Error(t, s.ScheduleDailyReport("25:99", &fakeReporter{}))
	assert.NoError(t, s.ScheduleEvery("redis-pool", time.Hour, func() {}))
}
