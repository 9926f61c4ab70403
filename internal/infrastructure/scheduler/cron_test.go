package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_RejectsBadSpec(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	s := New(log, time.Second)
	assert.Error(t, s.Add("every morning", "x", func(context.Context) (int, error) { return 0, nil }))
	assert.NoError(t, s.Add("0 8 * * *", "x", func(context.Context) (int, error) { return 0, nil }))
}

func TestRun_LogsOutcome(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	s := New(log, time.Second)

	s.run("ok_job", func(ctx context.Context) (int, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return 4, nil
	})
	e := hook.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "job finished", e.Message)
	assert.Equal(t, 4, e.Data["count"])

	s.run("bad_job", func(context.Context) (int, error) { return 0, errors.New("db down") })
	e = hook.LastEntry()
	assert.Equal(t, "job failed", e.Message)
	assert.Equal(t, "bad_job", e.Data["job"])
}

func TestStartStop_RunsScheduledJob(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	s := New(log, time.Second)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("@every 1s", "tick", func(context.Context) (int, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 1, nil
	}))

	s.Start()
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job never ran")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
