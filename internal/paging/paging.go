// Package paging computes result pages for inline keyboards. All
// functions are pure; truncation is presentation-only and never touches
// the stored tracks.
package paging

import (
	"github.com/soundpull/soundpull/core/telegram/format"
	"github.com/soundpull/soundpull/internal/music"
)

const (
	// DefaultPageSize is the fallback number of tracks per page.
	DefaultPageSize = 5

	titleLabelMax    = 30
	uploaderLabelMax = 20
)

// Item pairs a track with its absolute position in the session's result
// list. AddressIndex, not the position within the page, is what select
// buttons reference so page navigation cannot break selections.
type Item struct {
	Track        music.Track
	AddressIndex int
}

// Page is one bounded window over a result list plus its navigation state.
type Page struct {
	Items     []Item
	Index     int
	Count     int
	HasPrev   bool
	HasNext   bool
	TotalSize int
}

// PageCount returns ceil(total/pageSize), minimum 1.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// BuildPage slices results into the requested page. A page index outside
// [0, PageCount) is clamped into range; empty result lists yield an empty
// single page (callers guard the empty case before display).
func BuildPage(results []music.Track, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	count := PageCount(len(results), pageSize)
	if page < 0 {
		page = 0
	}
	if page > count-1 {
		page = count - 1
	}

	start := page * pageSize
	end := start + pageSize
	if start > len(results) {
		start = len(results)
	}
	if end > len(results) {
		end = len(results)
	}

	items := make([]Item, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, Item{Track: results[i], AddressIndex: i})
	}

	return Page{
		Items:     items,
		Index:     page,
		Count:     count,
		HasPrev:   page > 0,
		HasNext:   page < count-1,
		TotalSize: len(results),
	}
}

// ButtonLabel renders the inline button text for one item: icon, capped
// title and uploader, and the track duration.
func ButtonLabel(it Item) string {
	t := it.Track
	title := format.Ellipsize(format.StripInlineMarkers(t.Title), titleLabelMax)
	uploader := format.Ellipsize(format.StripInlineMarkers(t.Uploader), uploaderLabelMax)
	return t.Source.Icon() + " " + title + " - " + uploader + " • ⏱ " + music.FormatDuration(t.DurationSec)
}
