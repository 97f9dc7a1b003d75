package workers

import (
	"context"
	"time"

	"github.com/keyport-app/agent/internal/bundle"
)

// Workers aggregates the agent's background workers under one lifecycle.
type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start launches every worker in registration order.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops workers in reverse registration order and blocks until all
// have exited.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// BundlePoller adapts the bundle poll job to the Worker interface, carrying
// its schedule parameters.
type BundlePoller struct {
	job          *bundle.PollJob
	initialDelay time.Duration
	interval     time.Duration
}

func NewBundlePoller(job *bundle.PollJob, initialDelay, interval time.Duration) *BundlePoller {
	return &BundlePoller{job: job, initialDelay: initialDelay, interval: interval}
}

func (p *BundlePoller) Start(ctx context.Context) {
	p.job.Start(ctx, p.initialDelay, p.interval)
}

func (p *BundlePoller) Stop() {
	p.job.Stop()
}

// BundleStreamer adapts the bundle push-stream job to the Worker interface.
type BundleStreamer struct {
	job *bundle.StreamJob
}

func NewBundleStreamer(job *bundle.StreamJob) *BundleStreamer {
	return &BundleStreamer{job: job}
}

func (s *BundleStreamer) Start(ctx context.Context) {
	s.job.Start(ctx)
}

func (s *BundleStreamer) Stop() {
	s.job.Stop()
}
