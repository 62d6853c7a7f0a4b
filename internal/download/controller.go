// Package download drives a track from selection to delivered file:
// working directory setup, size guards, synthetic progress reporting,
// fetch, handoff, and cleanup. Local files never outlive the task; a
// file is removed only after the delivery callback has returned.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"

	"github.com/soundpull/soundpull/core/logger"
	"github.com/soundpull/soundpull/internal/music"
	"github.com/soundpull/soundpull/internal/provider"
)

// OversizeError reports a track rejected by the size guard, before or
// after fetching.
type OversizeError struct {
	Size  int64
	Limit int64
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("download: file size %s exceeds limit %s",
		humanize.Bytes(uint64(e.Size)), humanize.Bytes(uint64(e.Limit)))
}

// Notifier receives best-effort progress percentages. Implementations
// must not block; errors are the implementation's problem.
type Notifier func(percent int)

// Deliverer hands a finished file to the recipient. The file stays on
// disk until the call returns.
type Deliverer func(ctx context.Context, path string) error

// Config bounds a controller's downloads.
type Config struct {
	// MaxBytes rejects tracks larger than this, both from the backend's
	// announced size and from the produced file. Zero disables the guard.
	MaxBytes int64
	// Checkpoints are the synthetic progress percentages reported between
	// 0 and 100, in increasing order.
	Checkpoints []int
	// CheckpointDelay is the pause before each checkpoint report.
	CheckpointDelay time.Duration
}

// Controller runs download tasks against a provider inside a shared
// root directory, one subdirectory per user.
type Controller struct {
	provider provider.Provider
	cfg      Config
	root     string
}

func NewController(p provider.Provider, cfg Config, root string) *Controller {
	return &Controller{provider: p, cfg: cfg, root: root}
}

// UserDir is the per-user working directory under the download root.
func (c *Controller) UserDir(userID int64) string {
	return filepath.Join(c.root, strconv.FormatInt(userID, 10))
}

// Run executes one full task lifecycle and returns the finished task.
// The returned task's Stage is StageDelivered on success and StageFailed
// otherwise; the error mirrors Task.Err. Whatever happens, no file for
// this task remains on disk when Run returns.
func (c *Controller) Run(ctx context.Context, userID int64, track music.Track, notify Notifier, deliver Deliverer) (*Task, error) {
	task := newTask(userID, track)
	log := logger.DL.With(
		slog.String("task_id", task.ID),
		slog.Int64("user_id", userID),
		slog.String("url", track.URL),
	)
	log.Info("task started", slog.String("event", "task.start"))

	dir := c.UserDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		task.finish(StageFailed, fmt.Errorf("create working dir: %w", err))
		return task, task.Err
	}

	task.Stage = StageInProgress
	notify(0)

	if err := c.probeGuard(ctx, task); err != nil {
		c.fail(task, err, log)
		return task, task.Err
	}

	if err := c.reportCheckpoints(ctx, notify); err != nil {
		c.fail(task, err, log)
		return task, task.Err
	}

	path, err := c.provider.Fetch(ctx, track.URL, dir)
	if err != nil {
		c.fail(task, err, log)
		return task, task.Err
	}
	task.Path = path

	if err := c.sizeGuard(task); err != nil {
		c.fail(task, err, log)
		return task, task.Err
	}

	notify(100)

	if err := deliver(ctx, path); err != nil {
		c.fail(task, fmt.Errorf("deliver: %w", err), log)
		return task, task.Err
	}

	if err := os.Remove(path); err != nil {
		log.Warn("file remove failed",
			slog.String("event", "task.cleanup"),
			slog.Any("error", err),
		)
	}

	task.finish(StageDelivered, nil)
	log.Info("task delivered",
		slog.String("event", "task.done"),
		slog.Int64("size", task.SizeBytes),
		slog.Duration("took", logger.RoundMS(logger.Took(task.StartedAt))),
	)
	return task, nil
}

// probeGuard rejects tracks whose announced size already exceeds the
// limit, before any bytes are fetched. An unknown size passes.
func (c *Controller) probeGuard(ctx context.Context, task *Task) error {
	size, err := c.provider.ProbeSize(ctx, task.Track.URL)
	if err != nil {
		return err
	}
	task.SizeBytes = size
	if c.cfg.MaxBytes > 0 && size > c.cfg.MaxBytes {
		return &OversizeError{Size: size, Limit: c.cfg.MaxBytes}
	}
	return nil
}

// sizeGuard re-checks the produced file, catching backends that
// under-report. The file is removed on rejection.
func (c *Controller) sizeGuard(task *Task) error {
	st, err := os.Stat(task.Path)
	if err != nil {
		return fmt.Errorf("stat downloaded file: %w", err)
	}
	task.SizeBytes = st.Size()
	if c.cfg.MaxBytes > 0 && st.Size() > c.cfg.MaxBytes {
		return &OversizeError{Size: st.Size(), Limit: c.cfg.MaxBytes}
	}
	return nil
}

// reportCheckpoints emits the synthetic progress sequence, pausing
// before each report. Cancellation aborts between reports.
func (c *Controller) reportCheckpoints(ctx context.Context, notify Notifier) error {
	for _, percent := range c.cfg.Checkpoints {
		select {
		case <-time.After(c.cfg.CheckpointDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		notify(percent)
	}
	return nil
}

// fail marks the task failed and sweeps the user's working directory so
// partial files never accumulate.
func (c *Controller) fail(task *Task, err error, log *slog.Logger) {
	task.finish(StageFailed, err)
	log.Warn("task failed",
		slog.String("event", "task.fail"),
		slog.Any("error", err),
	)
	if cleanupErr := c.CleanupUser(task.UserID); cleanupErr != nil {
		log.Warn("cleanup sweep failed",
			slog.String("event", "task.cleanup"),
			slog.Any("error", cleanupErr),
		)
	}
}

// CleanupUser removes every file in the user's working directory.
// Failures are aggregated and reported; they never abort the sweep.
func (c *Controller) CleanupUser(userID int64) error {
	dir := c.UserDir(userID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var merr *multierror.Error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if merr != nil {
		return merr.ErrorOrNil()
	}

	logger.DL.Debug("user dir swept",
		slog.String("event", "cleanup"),
		slog.Int64("user_id", userID),
		slog.Int("entries", len(entries)),
	)
	return nil
}
