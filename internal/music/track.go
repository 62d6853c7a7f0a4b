// Package music defines the track model shared by search, pagination,
// and download components.
package music

import "fmt"

// Source identifies which search backend produced a track candidate.
type Source string

const (
	// SourceSoundCloud marks results coming from the primary backend.
	SourceSoundCloud Source = "soundcloud"
	// SourceOther marks results merged in from fallback backends.
	SourceOther Source = "other"
)

// Icon returns the display icon associated with a source.
func (s Source) Icon() string {
	if s == SourceSoundCloud {
		return "🔊"
	}
	return "🎵"
}

// Track is an immutable summary of a search result. Its position inside a
// session's result list is the addressing scheme used by callback buttons,
// so stored tracks must never be reordered or mutated.
type Track struct {
	Title       string
	Uploader    string
	DurationSec int
	// URL is the canonical page locator used to re-resolve the track for
	// download.
	URL    string
	Source Source
}

// FormatDuration renders seconds as M:SS, or "Unknown" when the duration
// was not reported by the provider.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
