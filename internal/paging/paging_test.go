package paging

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundpull/soundpull/internal/music"
)

func tracks(n int) []music.Track {
	ts := make([]music.Track, n)
	for i := range ts {
		ts[i] = music.Track{
			Title:       fmt.Sprintf("title-%d", i),
			Uploader:    "uploader",
			DurationSec: 90,
			URL:         fmt.Sprintf("https://x/%d", i),
			Source:      music.SourceSoundCloud,
		}
	}
	return ts
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0, 5))
	assert.Equal(t, 1, PageCount(5, 5))
	assert.Equal(t, 2, PageCount(6, 5))
	assert.Equal(t, 5, PageCount(25, 5))
	// Bad page size falls back to the default.
	assert.Equal(t, 2, PageCount(6, 0))
}

func TestBuildPageWindows(t *testing.T) {
	ts := tracks(25)

	for pageIdx := 0; pageIdx < 5; pageIdx++ {
		page := BuildPage(ts, pageIdx, 5)
		require.Len(t, page.Items, 5)
		assert.Equal(t, pageIdx, page.Index)
		assert.Equal(t, 5, page.Count)
		assert.Equal(t, pageIdx > 0, page.HasPrev)
		assert.Equal(t, pageIdx < 4, page.HasNext)
		assert.Equal(t, 25, page.TotalSize)
	}
}

func TestBuildPageAddressIndexIsAbsolute(t *testing.T) {
	ts := tracks(25)

	prev := -1
	for pageIdx := 0; pageIdx < 5; pageIdx++ {
		for _, item := range BuildPage(ts, pageIdx, 5).Items {
			assert.Greater(t, item.AddressIndex, prev, "address indexes strictly increase across pages")
			assert.Equal(t, ts[item.AddressIndex].URL, item.Track.URL)
			prev = item.AddressIndex
		}
	}
	assert.Equal(t, 24, prev)
}

func TestBuildPagePartialLastPage(t *testing.T) {
	page := BuildPage(tracks(12), 2, 5)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 10, page.Items[0].AddressIndex)
	assert.False(t, page.HasNext)
}

func TestBuildPageClampsOutOfRange(t *testing.T) {
	ts := tracks(12)

	below := BuildPage(ts, -3, 5)
	assert.Equal(t, 0, below.Index)

	above := BuildPage(ts, 99, 5)
	assert.Equal(t, 2, above.Index)
	assert.Len(t, above.Items, 2)
}

func TestButtonLabelTruncation(t *testing.T) {
	long := Item{Track: music.Track{
		Title:       strings.Repeat("t", 64),
		Uploader:    strings.Repeat("u", 64),
		DurationSec: 187,
		Source:      music.SourceSoundCloud,
	}}

	label := ButtonLabel(long)
	assert.Contains(t, label, strings.Repeat("t", 30)+"...")
	assert.Contains(t, label, strings.Repeat("u", 20)+"...")
	assert.Contains(t, label, "3:07")
	assert.True(t, strings.HasPrefix(label, "🔊"))
}

func TestButtonLabelShortValuesUntouched(t *testing.T) {
	item := Item{Track: music.Track{
		Title:    "Short",
		Uploader: "Someone",
		Source:   music.SourceOther,
	}}

	label := ButtonLabel(item)
	assert.Contains(t, label, "Short")
	assert.NotContains(t, label, "...")
	assert.Contains(t, label, "Unknown")
	assert.True(t, strings.HasPrefix(label, "🎵"))
}

func TestButtonLabelStripsMarkdownMarkers(t *testing.T) {
	item := Item{Track: music.Track{Title: "*Loud*", Uploader: "_quiet_"}}

	label := ButtonLabel(item)
	assert.NotContains(t, label, "*")
	assert.NotContains(t, label, "_quiet_")
	assert.Contains(t, label, "Loud")
	assert.Contains(t, label, "quiet")
}
