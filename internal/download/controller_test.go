package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundpull/soundpull/internal/music"
)

type fakeProvider struct {
	probeSize int64
	probeErr  error
	fetchErr  error
	// payload is written to the produced file; its length is the on-disk size.
	payload []byte
}

func (f *fakeProvider) Search(context.Context, string, int) ([]music.Track, error) {
	return nil, nil
}

func (f *fakeProvider) ProbeSize(context.Context, string) (int64, error) {
	return f.probeSize, f.probeErr
}

func (f *fakeProvider) Fetch(_ context.Context, _ string, destDir string) (string, error) {
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	path := filepath.Join(destDir, "track.mp3")
	if err := os.WriteFile(path, f.payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func testTrack() music.Track {
	return music.Track{Title: "t", URL: "https://sc.example/t", Source: music.SourceSoundCloud}
}

func newTestController(t *testing.T, p *fakeProvider, maxBytes int64) *Controller {
	t.Helper()
	return NewController(p, Config{
		MaxBytes:        maxBytes,
		Checkpoints:     []int{10, 25, 40, 60, 75, 90},
		CheckpointDelay: time.Millisecond,
	}, t.TempDir())
}

func TestRunDeliversAndRemovesFile(t *testing.T) {
	prov := &fakeProvider{probeSize: 100, payload: []byte("audio")}
	ctrl := newTestController(t, prov, 1024)

	var reported []int
	var deliveredPath string
	var fileExistedOnDelivery bool

	task, err := ctrl.Run(context.Background(), 7, testTrack(),
		func(p int) { reported = append(reported, p) },
		func(_ context.Context, path string) error {
			deliveredPath = path
			_, statErr := os.Stat(path)
			fileExistedOnDelivery = statErr == nil
			return nil
		},
	)
	require.NoError(t, err)

	assert.Equal(t, StageDelivered, task.Stage)
	assert.Equal(t, []int{0, 10, 25, 40, 60, 75, 90, 100}, reported)
	assert.True(t, fileExistedOnDelivery, "file must exist while delivery runs")
	assert.NoFileExists(t, deliveredPath, "file must be removed after delivery")
	assert.Equal(t, int64(len("audio")), task.SizeBytes)
	assert.NotEmpty(t, task.ID)
}

func TestRunRejectsOversizeBeforeFetch(t *testing.T) {
	prov := &fakeProvider{probeSize: 2048, payload: []byte("audio")}
	ctrl := newTestController(t, prov, 1024)

	delivered := false
	task, err := ctrl.Run(context.Background(), 7, testTrack(),
		func(int) {},
		func(context.Context, string) error { delivered = true; return nil },
	)

	var oversizeErr *OversizeError
	require.ErrorAs(t, err, &oversizeErr)
	assert.Equal(t, int64(2048), oversizeErr.Size)
	assert.Equal(t, StageFailed, task.Stage)
	assert.False(t, delivered)
	assert.Empty(t, task.Path, "nothing fetched on pre-check rejection")
}

func TestRunRejectsOversizeAfterFetch(t *testing.T) {
	// Announced size passes, actual file does not.
	prov := &fakeProvider{probeSize: 10, payload: make([]byte, 64)}
	ctrl := newTestController(t, prov, 32)

	task, err := ctrl.Run(context.Background(), 7, testTrack(),
		func(int) {},
		func(context.Context, string) error { return nil },
	)

	var oversizeErr *OversizeError
	require.ErrorAs(t, err, &oversizeErr)
	assert.Equal(t, int64(64), oversizeErr.Size)
	assert.Equal(t, StageFailed, task.Stage)
	assert.NoFileExists(t, task.Path, "oversize file must be swept")
}

func TestRunCleansUpOnDeliveryFailure(t *testing.T) {
	prov := &fakeProvider{probeSize: 5, payload: []byte("audio")}
	ctrl := newTestController(t, prov, 1024)

	task, err := ctrl.Run(context.Background(), 7, testTrack(),
		func(int) {},
		func(context.Context, string) error { return errors.New("recipient gone") },
	)

	require.Error(t, err)
	assert.Equal(t, StageFailed, task.Stage)
	assert.NoFileExists(t, task.Path)

	entries, readErr := os.ReadDir(ctrl.UserDir(7))
	if readErr == nil {
		assert.Empty(t, entries, "working dir must be swept on failure")
	}
}

func TestRunPropagatesFetchFailure(t *testing.T) {
	prov := &fakeProvider{probeSize: 5, fetchErr: errors.New("extraction failed")}
	ctrl := newTestController(t, prov, 1024)

	task, err := ctrl.Run(context.Background(), 7, testTrack(),
		func(int) {},
		func(context.Context, string) error { return nil },
	)

	require.Error(t, err)
	assert.Equal(t, StageFailed, task.Stage)
	assert.ErrorIs(t, task.Err, err)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	prov := &fakeProvider{probeSize: 5, payload: []byte("audio")}
	ctrl := NewController(prov, Config{
		MaxBytes:        1024,
		Checkpoints:     []int{10, 25, 40},
		CheckpointDelay: 50 * time.Millisecond,
	}, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task, err := ctrl.Run(ctx, 7, testTrack(),
		func(int) {},
		func(context.Context, string) error { return nil },
	)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageFailed, task.Stage)
}

func TestCleanupUserSweepsEverything(t *testing.T) {
	ctrl := newTestController(t, &fakeProvider{}, 1024)
	dir := ctrl.UserDir(9)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.mp3"), []byte("x"), 0o644))

	require.NoError(t, ctrl.CleanupUser(9))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanupUserMissingDirIsNoop(t *testing.T) {
	ctrl := newTestController(t, &fakeProvider{}, 1024)
	assert.NoError(t, ctrl.CleanupUser(12345))
}
