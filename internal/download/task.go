package download

import (
	"time"

	"github.com/google/uuid"

	"github.com/soundpull/soundpull/internal/music"
)

// Stage is a download task's lifecycle position. Transitions only move
// forward: Queued -> InProgress -> Delivered or Failed.
type Stage string

const (
	StageQueued     Stage = "queued"
	StageInProgress Stage = "in_progress"
	StageDelivered  Stage = "delivered"
	StageFailed     Stage = "failed"
)

// Task is one delivery attempt for one track. It is owned by a single
// Run call and safe to read after Run returns.
type Task struct {
	ID         string
	UserID     int64
	Track      music.Track
	Stage      Stage
	Path       string
	SizeBytes  int64
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

func newTask(userID int64, track music.Track) *Task {
	return &Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Track:     track,
		Stage:     StageQueued,
		StartedAt: time.Now(),
	}
}

func (t *Task) finish(stage Stage, err error) {
	t.Stage = stage
	t.Err = err
	t.FinishedAt = time.Now()
}
