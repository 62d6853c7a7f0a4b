// Package provider resolves search queries into track candidates and
// fetches audio files for delivery. The concrete implementation shells
// out to yt-dlp; the interface exists so the download controller and bot
// handlers can be tested against fakes.
package provider

import (
	"context"
	"fmt"

	"github.com/soundpull/soundpull/internal/music"
)

// Provider is the audio backend contract.
type Provider interface {
	// Search returns up to limit candidates ordered by backend relevance,
	// primary backend results first.
	Search(ctx context.Context, query string, limit int) ([]music.Track, error)

	// ProbeSize reports the expected file size in bytes for a track URL,
	// or 0 when the backend does not announce one.
	ProbeSize(ctx context.Context, url string) (int64, error)

	// Fetch downloads the track's audio into destDir and returns the
	// absolute path of the produced file.
	Fetch(ctx context.Context, url, destDir string) (string, error)
}

// ExtractionError reports a failed metadata extraction or download run
// for one backend strategy.
type ExtractionError struct {
	Strategy string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("provider: %s extraction failed: %v", e.Strategy, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
