package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundpull/soundpull/internal/music"
)

func makeTracks(n int) []music.Track {
	tracks := make([]music.Track, n)
	for i := range tracks {
		tracks[i] = music.Track{
			Title:    fmt.Sprintf("track %d", i),
			Uploader: "uploader",
			URL:      fmt.Sprintf("https://example.com/t/%d", i),
			Source:   music.SourceSoundCloud,
		}
	}
	return tracks
}

func TestPutResetsPage(t *testing.T) {
	store := NewStore(5)
	store.Put(1, "first", makeTracks(12))
	require.NoError(t, store.SetPage(1, 2))

	store.Put(1, "second", makeTracks(7))

	sess, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "second", sess.Query)
	assert.Equal(t, 0, sess.CurrentPage)
	assert.Len(t, sess.Results, 7)
}

func TestGetMissing(t *testing.T) {
	store := NewStore(5)

	_, err := store.Get(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetPageBounds(t *testing.T) {
	store := NewStore(5)
	store.Put(1, "q", makeTracks(12)) // pages 0..2

	assert.ErrorIs(t, store.SetPage(1, -1), ErrInvalidPage)
	assert.ErrorIs(t, store.SetPage(1, 3), ErrInvalidPage)
	assert.NoError(t, store.SetPage(1, 2))
	assert.ErrorIs(t, store.SetPage(99, 0), ErrNotFound)
}

func TestTrackAddressing(t *testing.T) {
	store := NewStore(5)
	store.Put(1, "q", makeTracks(8))

	track, err := store.Track(1, 6)
	require.NoError(t, err)
	assert.Equal(t, "track 6", track.Title)

	_, err = store.Track(1, 8)
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = store.Track(2, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearIdempotent(t *testing.T) {
	store := NewStore(5)
	store.Put(1, "q", makeTracks(3))

	store.Clear(1)
	store.Clear(1)

	_, err := store.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutCopiesResults(t *testing.T) {
	store := NewStore(5)
	tracks := makeTracks(3)
	store.Put(1, "q", tracks)

	tracks[0].Title = "mutated"

	sess, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "track 0", sess.Results[0].Title)
}

func TestConcurrentUsersIsolated(t *testing.T) {
	store := NewStore(5)

	var wg sync.WaitGroup
	for user := int64(1); user <= 16; user++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			store.Put(owner, fmt.Sprintf("q%d", owner), makeTracks(11))
			_ = store.SetPage(owner, 1)
			if owner%4 == 0 {
				store.Clear(owner)
			}
		}(user)
	}
	wg.Wait()

	for user := int64(1); user <= 16; user++ {
		sess, err := store.Get(user)
		if user%4 == 0 {
			assert.ErrorIs(t, err, ErrNotFound)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("q%d", user), sess.Query)
		assert.Equal(t, 1, sess.CurrentPage)
	}
}
