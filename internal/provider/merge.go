package provider

import "github.com/soundpull/soundpull/internal/music"

// mergeResults concatenates strategy result groups in priority order,
// dropping tracks whose URL already appeared in an earlier group and
// capping the output at limit. Order within each group is preserved.
func mergeResults(limit int, groups ...[]music.Track) []music.Track {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	merged := make([]music.Track, 0, limit)
	for _, group := range groups {
		for _, track := range group {
			if track.URL == "" {
				continue
			}
			if _, dup := seen[track.URL]; dup {
				continue
			}
			seen[track.URL] = struct{}{}
			merged = append(merged, track)
			if len(merged) == limit {
				return merged
			}
		}
	}
	return merged
}
