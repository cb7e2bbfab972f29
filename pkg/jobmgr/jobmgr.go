// Package jobmgr runs named long-lived jobs under one parent context, with
// status callbacks and fail-fast shutdown.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//
//	_ = jm.Start("device", conn.Run)
//	_ = jm.Start("discord", bot.Run)
//
//	<-jm.Done()          // first failure or parent cancellation
//	err := jm.Shutdown() // cancel the rest and wait
//
// When any job returns an error every other job is cancelled.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Job represents a running unit of work.
// Jobs are added and removed by Manager automatically.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:device
//	error:device:device closed the connection
//	done:device
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	errOnce sync.Once
	err     error
}

// NewManager creates a Manager whose jobs stop when parent is done.
// The reporter callback may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs a job in its own goroutine and returns immediately.
// If a job with the same name is already running, an error is returned.
// A job that returns an error cancels every other job.
func (m *Manager) Start(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return fmt.Errorf("job '%s' not started: manager is shut down", name)
	}
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already running", name)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.jobs[name] = &Job{Name: name, Cancel: cancel}
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.report("running:" + name)

		err := runner(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			m.report("error:" + name + ":" + err.Error())
			m.fail(fmt.Errorf("job %s: %w", name, err))
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job by name.
// If the job is not running, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	return nil
}

// List returns the names of active jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: device, discord"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// Done is closed when the parent context ends, a job fails, or Shutdown is
// called.
func (m *Manager) Done() <-chan struct{} {
	return m.ctx.Done()
}

// Wait blocks until every job has returned and reports the first failure.
func (m *Manager) Wait() error {
	m.wg.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Shutdown cancels every job and waits for them.
func (m *Manager) Shutdown() error {
	m.cancel()
	return m.Wait()
}

func (m *Manager) fail(err error) {
	m.errOnce.Do(func() {
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()
		m.cancel()
	})
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
