package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRefresher struct {
	mu    sync.Mutex
	calls []string
	err   error
	done  chan string
}

func newRecordingRefresher() *recordingRefresher {
	return &recordingRefresher{done: make(chan string, queueSize)}
}

func (r *recordingRefresher) Refresh(ctx context.Context, userID string) error {
	r.mu.Lock()
	r.calls = append(r.calls, userID)
	r.mu.Unlock()
	r.done <- userID
	return r.err
}

func TestOverviewWorker_ProcessesJobs(t *testing.T) {
	ref := newRecordingRefresher()
	w := NewOverviewWorker(ref, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := w.Start(ctx)

	w.Enqueue("user-1")
	w.Enqueue("user-2")

	for _, want := range []string{"user-1", "user-2"} {
		select {
		case got := <-ref.done:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestOverviewWorker_RefreshErrorKeepsRunning(t *testing.T) {
	ref := newRecordingRefresher()
	ref.err = errors.New("redis down")
	w := NewOverviewWorker(ref, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Enqueue("a")
	w.Enqueue("b")

	for i := 0; i < 2; i++ {
		select {
		case <-ref.done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped after a failed job")
		}
	}
}

func TestOverviewWorker_EnqueueDropsWhenFull(t *testing.T) {
	ref := newRecordingRefresher()
	w := NewOverviewWorker(ref, zap.NewNop())

	// not started: nothing drains the queue
	for i := 0; i < queueSize+10; i++ {
		w.Enqueue("user")
	}

	require.Len(t, w.jobs, queueSize)
}
