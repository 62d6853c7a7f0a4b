package provider

import (
	"testing"

	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"

	"github.com/soundpull/soundpull/internal/music"
)

func tr(url string, source music.Source) music.Track {
	return music.Track{Title: url, URL: url, Source: source}
}

func TestMergeDropsCrossStrategyDuplicates(t *testing.T) {
	primary := []music.Track{
		tr("https://a.example/1", music.SourceSoundCloud),
		tr("https://a.example/2", music.SourceSoundCloud),
	}
	fallback := []music.Track{
		tr("https://a.example/2", music.SourceOther),
		tr("https://a.example/3", music.SourceOther),
	}

	merged := mergeResults(10, primary, fallback)

	assert.Equal(t, []music.Track{
		tr("https://a.example/1", music.SourceSoundCloud),
		tr("https://a.example/2", music.SourceSoundCloud),
		tr("https://a.example/3", music.SourceOther),
	}, merged)
}

func TestMergePreservesPriorityOrder(t *testing.T) {
	merged := mergeResults(10,
		[]music.Track{tr("u1", music.SourceSoundCloud)},
		[]music.Track{tr("u2", music.SourceOther), tr("u3", music.SourceOther)},
	)

	assert.Equal(t, "u1", merged[0].URL)
	assert.Equal(t, "u2", merged[1].URL)
	assert.Equal(t, "u3", merged[2].URL)
}

func TestMergeCapsAtLimit(t *testing.T) {
	group := make([]music.Track, 0, 8)
	for _, u := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		group = append(group, tr(u, music.SourceOther))
	}

	merged := mergeResults(5, group)
	assert.Len(t, merged, 5)

	assert.Nil(t, mergeResults(0, group))
}

func TestMergeSkipsEmptyURLs(t *testing.T) {
	merged := mergeResults(10, []music.Track{
		tr("", music.SourceSoundCloud),
		tr("u1", music.SourceSoundCloud),
	})

	assert.Len(t, merged, 1)
	assert.Equal(t, "u1", merged[0].URL)
}

func TestTracksFromInfoFlattensPlaylist(t *testing.T) {
	title := "Song"
	uploader := "Artist"
	url := "https://sc.example/song"
	duration := 187.0

	infos := []*ytdlp.ExtractedInfo{{
		Entries: []*ytdlp.ExtractedInfo{
			{Title: &title, Uploader: &uploader, WebpageURL: &url, Duration: &duration},
			{Title: &title}, // no URL, dropped
			nil,
		},
	}}

	tracks := tracksFromInfo(infos, music.SourceSoundCloud)

	assert.Len(t, tracks, 1)
	assert.Equal(t, "Song", tracks[0].Title)
	assert.Equal(t, "Artist", tracks[0].Uploader)
	assert.Equal(t, 187, tracks[0].DurationSec)
	assert.Equal(t, url, tracks[0].URL)
	assert.Equal(t, music.SourceSoundCloud, tracks[0].Source)
}
