package crontab

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckExpression(t *testing.T) {
	asserter := assert.New(t)

	asserter.NoError(Client.CheckExpression("0 0 3 * * *"))
	asserter.NoError(Client.CheckExpression("@every 5m"))
	asserter.NoError(Client.CheckExpression("@manual"))
	asserter.Error(Client.CheckExpression("not a schedule"))
	// one bad expression fails the whole batch
	asserter.Error(Client.CheckExpression("@every 5m", "61 * * * * *"))
}

func TestAddJob(t *testing.T) {
	asserter := assert.New(t)

	crontab := NewCrontab()

	_, err := crontab.AddJob("@every 1h", nil)
	asserter.ErrorContains(err, "invalid job")

	_, err = crontab.AddJob("", New(WithName("noop")))
	asserter.ErrorContains(err, "invalid expression")

	id, err := crontab.AddJob("@every 1h", New(
		WithName("watchdog-check"),
		WithRunFunc(func() error {
			return nil
		}),
	))
	asserter.NoError(err)

	next := crontab.GetNextRunTime(id)
	asserter.Len(next, 1)

	crontab.RemoveJob(id)
}

func TestManualScheduleNeverFires(t *testing.T) {
	asserter := assert.New(t)

	crontab := NewCrontab()
	id, err := crontab.AddJob("@manual", New(WithName("on-demand")))
	asserter.NoError(err)

	crontab.Cron.Start()
	defer crontab.Cron.Stop()

	next := crontab.GetNextRunTime(id)
	asserter.Len(next, 1)
	asserter.True(next[0].IsZero() || next[0].After(time.Now().AddDate(10, 0, 0)))
}

func TestRunById(t *testing.T) {
	asserter := assert.New(t)

	crontab := NewCrontab()
	ran := make(chan struct{}, 1)
	id, err := crontab.AddJob("@manual", New(
		WithName("on-demand"),
		WithRunFunc(func() error {
			ran <- struct{}{}
			return nil
		}),
	))
	asserter.NoError(err)

	crontab.RunById(id)
	select {
	case <-ran:
	default:
		t.Fatal("job did not run")
	}
}

func TestJobStopsOnFirstError(t *testing.T) {
	asserter := assert.New(t)

	calls := make([]string, 0)
	job := New(
		WithName("chain"),
		WithRunFunc(func() error {
			calls = append(calls, "first")
			return errors.New("boom")
		}),
		WithRunFunc(func() error {
			calls = append(calls, "second")
			return nil
		}),
	)
	job.Run()
	asserter.Equal([]string{"first"}, calls)
}
