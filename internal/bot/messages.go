package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	tele "gopkg.in/telebot.v4"

	"github.com/soundpull/soundpull/core/telegram/format"
	"github.com/soundpull/soundpull/internal/download"
	"github.com/soundpull/soundpull/internal/music"
	"github.com/soundpull/soundpull/internal/paging"
	"github.com/soundpull/soundpull/internal/provider"
)

const (
	msgStart = "👋 Hi! Send me a track name or artist and I'll find it for you.\n" +
		"Pick a result from the list and I'll deliver the audio right here."
	msgHelp = "Send any text to search for tracks.\n\n" +
		"/start - what this bot does\n" +
		"/cancel - drop the current search\n" +
		"/history - your recent downloads\n" +
		"/help - this message"
	msgSearching     = "🔍 Searching..."
	msgQueryTooShort = "Query is too short. Give me at least %d characters."
	msgNothingFound  = "😕 Nothing found for \"%s\". Try different keywords."
	msgSessionGone   = "This search has expired. Send me a new query."
	msgCancelled     = "Search cancelled. Send me a new query whenever you like."
	msgNothingToDo   = "Nothing to cancel. Send me a track name to search."
	msgDone          = "✅ Sent: %s"
	msgRateLimited   = "⏳ Easy there. One request at a time, please."
)

const progressBarSegments = 10

// progressBar renders the textual bar shown during downloads, e.g.
// [██████░░░░] 60%.
func progressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressBarSegments / 100
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.Repeat("█", filled))
	b.WriteString(strings.Repeat("░", progressBarSegments-filled))
	b.WriteString(fmt.Sprintf("] %d%%", percent))
	return b.String()
}

func progressText(track music.Track, percent int) string {
	title := format.StripInlineMarkers(track.Title)
	return fmt.Sprintf("⬇️ Downloading: %s\n%s", title, progressBar(percent))
}

func progressDoneText(track music.Track) string {
	return fmt.Sprintf(msgDone, format.StripInlineMarkers(track.Title))
}

func resultsText(query string, page paging.Page) string {
	return fmt.Sprintf("🎵 Results for \"%s\"\nPage %d/%d • %d tracks",
		format.StripInlineMarkers(query), page.Index+1, page.Count, page.TotalSize)
}

// userErrorText maps an internal failure onto the reply the user sees.
// Wording never leaks URLs, paths, or provider output.
func userErrorText(err error, maxBytes int64) string {
	var oversize *download.OversizeError
	if errors.As(err, &oversize) {
		return fmt.Sprintf("⚠️ This track is over the %s limit, so I can't deliver it.",
			humanize.Bytes(uint64(maxBytes)))
	}
	var extraction *provider.ExtractionError
	if errors.As(err, &extraction) {
		return "😕 Couldn't process this track. Try another result."
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "⏳ That took too long and was aborted. Try again."
	}
	return "Something went wrong. Please try again later."
}

// recipientUnreachable reports delivery failures caused by the user
// blocking the bot or deleting their account. These are swallowed: there
// is nobody left to notify.
func recipientUnreachable(err error) bool {
	return errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrUserIsDeactivated) ||
		errors.Is(err, tele.ErrNotStartedByUser)
}
