package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) report(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, s)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestShutdownStopsJobs(t *testing.T) {
	rec := &recorder{}
	m := NewManager(context.Background(), rec.report)

	require.NoError(t, m.Start("device", blockUntilDone))
	require.NoError(t, m.Start("discord", blockUntilDone))
	assert.Error(t, m.Start("device", blockUntilDone))

	assert.Eventually(t, func() bool { return len(rec.all()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"device", "discord"}, m.List())
	assert.Equal(t, "Running jobs: device, discord", m.Status())

	require.NoError(t, m.Shutdown())
	assert.Empty(t, m.List())
	assert.Equal(t, "No jobs are running.", m.Status())
	assert.ElementsMatch(t, []string{"running:device", "running:discord", "done:device", "done:discord"}, rec.all())

	assert.Error(t, m.Start("late", blockUntilDone))
}

func TestFailureCancelsOthers(t *testing.T) {
	rec := &recorder{}
	m := NewManager(context.Background(), rec.report)
	boom := errors.New("device closed the connection")

	require.NoError(t, m.Start("discord", blockUntilDone))
	require.NoError(t, m.Start("device", func(ctx context.Context) error { return boom }))

	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Fatal("manager not cancelled after job failure")
	}

	err := m.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, rec.all(), "error:device:device closed the connection")
	assert.Contains(t, rec.all(), "done:discord")
}

func TestStop(t *testing.T) {
	m := NewManager(context.Background(), nil)
	require.NoError(t, m.Start("device", blockUntilDone))

	require.NoError(t, m.Stop("device"))
	assert.Error(t, m.Stop("nope"))

	assert.Eventually(t, func() bool { return len(m.List()) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Shutdown())
}

func TestParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx, nil)
	require.NoError(t, m.Start("device", blockUntilDone))

	cancel()
	<-m.Done()
	assert.NoError(t, m.Wait())
}
