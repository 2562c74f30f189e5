package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	id string
	fn func(ctx context.Context) error
}

func (j funcJob) ID() string                        { return j.id }
func (j funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }

func TestDispatcher_RunsQueuedJobsBeforeStopReturns(t *testing.T) {
	d := NewDispatcher(2, 10, time.Second, nil)
	d.Run()

	var done int32
	for i := 0; i < 5; i++ {
		ok := d.SubmitJob(funcJob{id: "job", fn: func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&done, 1)
			return nil
		}})
		require.True(t, ok)
	}

	d.Stop()
	assert.Equal(t, int32(5), atomic.LoadInt32(&done))
}

func TestDispatcher_SubmitNeverBlocksWhenFull(t *testing.T) {
	d := NewDispatcher(1, 1, time.Second, nil)
	d.Run()

	release := make(chan struct{})
	started := make(chan struct{})
	blocking := funcJob{id: "blocking", fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}
	require.True(t, d.SubmitJob(blocking))
	<-started

	noop := funcJob{id: "noop", fn: func(context.Context) error { return nil }}
	require.True(t, d.SubmitJob(noop), "fills the single queue slot")

	submitted := make(chan bool, 1)
	go func() { submitted <- d.SubmitJob(noop) }()
	select {
	case ok := <-submitted:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("SubmitJob blocked on a full queue")
	}

	close(release)
	d.Stop()
}

func TestDispatcher_RejectsAfterStop(t *testing.T) {
	d := NewDispatcher(1, 1, time.Second, nil)
	d.Run()
	d.Stop()
	d.Stop()

	assert.False(t, d.SubmitJob(funcJob{id: "late", fn: func(context.Context) error { return nil }}))
}

func TestWorker_JobGetsDeadlineAndSurvivesFailures(t *testing.T) {
	d := NewDispatcher(1, 4, 20*time.Millisecond, nil)
	d.Run()

	var mu sync.Mutex
	var deadlineErr error
	d.SubmitJob(funcJob{id: "fails", fn: func(context.Context) error { return errors.New("boom") }})
	d.SubmitJob(funcJob{id: "panics", fn: func(context.Context) error { panic("bad job") }})
	d.SubmitJob(funcJob{id: "slow", fn: func(ctx context.Context) error {
		<-ctx.Done()
		mu.Lock()
		deadlineErr = ctx.Err()
		mu.Unlock()
		return ctx.Err()
	}})

	d.Stop()
	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, deadlineErr, context.DeadlineExceeded)
}
