package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"

	"github.com/soundpull/soundpull/internal/download"
	"github.com/soundpull/soundpull/internal/music"
	"github.com/soundpull/soundpull/internal/paging"
	"github.com/soundpull/soundpull/internal/provider"
)

func TestProgressBarRendering(t *testing.T) {
	assert.Equal(t, "[░░░░░░░░░░] 0%", progressBar(0))
	assert.Equal(t, "[██████░░░░] 60%", progressBar(60))
	assert.Equal(t, "[██████████] 100%", progressBar(100))
	// Out-of-range values are clamped, not rendered literally.
	assert.Equal(t, "[░░░░░░░░░░] 0%", progressBar(-5))
	assert.Equal(t, "[██████████] 100%", progressBar(250))
}

func TestProgressTextStripsMarkers(t *testing.T) {
	track := music.Track{Title: "*Night* _Drive_ `live`"}
	text := progressText(track, 25)

	assert.Contains(t, text, "Night Drive live")
	assert.NotContains(t, text, "*")
	assert.NotContains(t, text, "`")
}

func TestResultsTextShowsPagePosition(t *testing.T) {
	results := make([]music.Track, 12)
	page := paging.BuildPage(results, 1, 5)

	text := resultsText("daft punk", page)
	assert.Contains(t, text, "daft punk")
	assert.Contains(t, text, "Page 2/3")
	assert.Contains(t, text, "12 tracks")
}

func TestUserErrorTextMapping(t *testing.T) {
	limit := int64(50 * 1024 * 1024)

	oversize := userErrorText(&download.OversizeError{Size: 99, Limit: limit}, limit)
	assert.Contains(t, oversize, "limit")

	extraction := userErrorText(&provider.ExtractionError{Strategy: "download", Err: errors.New("boom")}, limit)
	assert.Contains(t, extraction, "Couldn't process")
	assert.NotContains(t, extraction, "boom", "provider output must not leak")

	timeout := userErrorText(context.DeadlineExceeded, limit)
	assert.Contains(t, timeout, "aborted")

	generic := userErrorText(errors.New("disk on fire"), limit)
	assert.NotContains(t, generic, "disk", "internal detail must not leak")
}

func TestRecipientUnreachable(t *testing.T) {
	assert.True(t, recipientUnreachable(tele.ErrBlockedByUser))
	assert.True(t, recipientUnreachable(tele.ErrUserIsDeactivated))
	assert.False(t, recipientUnreachable(errors.New("network down")))
}

func TestResultsMarkupLayout(t *testing.T) {
	results := make([]music.Track, 12)
	for i := range results {
		results[i] = music.Track{Title: "t", Uploader: "u", URL: "https://x/" + strings.Repeat("a", i+1)}
	}

	// Middle page: tracks + nav with both arrows + cancel.
	page := paging.BuildPage(results, 1, 5)
	markup := resultsMarkup(page)
	rows := markup.InlineKeyboard

	assert.Len(t, rows, 7, "5 track rows, nav row, cancel row")
	assert.Len(t, rows[5], 3, "prev, indicator, next")
	assert.Contains(t, rows[5][1].Text, "2/3")

	// First page has no prev arrow, last page no next arrow.
	first := resultsMarkup(paging.BuildPage(results, 0, 5))
	assert.Len(t, first.InlineKeyboard[5], 2)
	// Last page holds the remaining 2 tracks, so nav is row index 2.
	last := resultsMarkup(paging.BuildPage(results, 2, 5))
	assert.Len(t, last.InlineKeyboard[2], 2)
}

func TestResultsMarkupSinglePageHasNoNavRow(t *testing.T) {
	results := []music.Track{{Title: "only", URL: "u"}}

	markup := resultsMarkup(paging.BuildPage(results, 0, 5))
	assert.Len(t, markup.InlineKeyboard, 2, "track row and cancel row only")
}

func TestResultsMarkupSelectCarriesAbsoluteIndex(t *testing.T) {
	results := make([]music.Track, 12)
	for i := range results {
		results[i] = music.Track{Title: "t", URL: "u"}
	}

	markup := resultsMarkup(paging.BuildPage(results, 2, 5))
	// Third page starts at absolute index 10.
	assert.Contains(t, markup.InlineKeyboard[0][0].Data, "10")
	assert.Contains(t, markup.InlineKeyboard[1][0].Data, "11")
}
