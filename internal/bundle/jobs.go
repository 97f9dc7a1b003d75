package bundle

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/keyport-app/agent/internal/logger"
)

// PollJob runs CheckAndSync on a ticker as the fallback path for catching
// bundle updates the push stream missed. The job is idle until Start is
// called.
type PollJob struct {
	manager *Manager

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPollJob(manager *Manager) *PollJob {
	return &PollJob{manager: manager}
}

// Start launches a background goroutine that runs an initial check after
// initialDelay and then re-checks every interval. If interval is zero or
// negative it defaults to 30 minutes. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *PollJob) Start(ctx context.Context, initialDelay, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()

		select {
		case <-jobCtx.Done():
			return
		case <-time.After(initialDelay):
			_ = j.manager.CheckAndSync(jobCtx)
		}

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = j.manager.CheckAndSync(jobCtx)
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until it has
// fully exited. Safe to call when the job is not running.
func (j *PollJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// StreamJob holds a long-lived event-stream connection to the remote
// service and triggers a sync whenever a "bundle-updated" notification
// arrives. The connection reconnects with a fixed backoff on any disconnect
// or error, indefinitely, for the lifetime of the job's context.
type StreamJob struct {
	manager   *Manager
	streamURL string
	backoff   time.Duration
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStreamJob constructs a StreamJob reading streamURL. backoff defaults
// to 10 seconds when zero or negative.
func NewStreamJob(manager *Manager, streamURL string, backoff time.Duration, log *logger.Logger) *StreamJob {
	if backoff <= 0 {
		backoff = 10 * time.Second
	}
	return &StreamJob{
		manager:   manager,
		streamURL: streamURL,
		backoff:   backoff,
		logger:    log,
	}
}

// Start launches the listener goroutine. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *StreamJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()

		for {
			j.listenOnce(jobCtx)

			select {
			case <-jobCtx.Done():
				return
			case <-time.After(j.backoff):
			}
		}
	}()
}

// Stop cancels the listener's context and blocks until the goroutine has
// fully exited. Safe to call when the job is not running.
func (j *StreamJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// listenOnce opens one stream connection and consumes events until the
// stream ends or ctx is cancelled. Errors are logged, not surfaced: the
// caller's reconnect loop is the retry policy.
func (j *StreamJob) listenOnce(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.streamURL, nil)
	if err != nil {
		j.logger.Err(err).Msg("build bundle stream request")
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	// no client timeout: the stream is expected to stay open indefinitely
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		j.logger.Debug().Err(err).Msg("bundle stream connect failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		j.logger.Debug().Int("status", resp.StatusCode).Msg("bundle stream rejected")
		return
	}

	j.logger.Info().Msg("bundle update stream connected")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if strings.Contains(payload, "bundle-updated") {
			j.logger.Info().Msg("bundle update pushed, syncing")
			_ = j.manager.CheckAndSync(ctx)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		j.logger.Debug().Err(err).Msg("bundle stream closed")
	}
}
