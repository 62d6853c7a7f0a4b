package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/soundpull/soundpull/core/logger"
	"github.com/soundpull/soundpull/core/telegram/format"
	"github.com/soundpull/soundpull/internal/music"
)

const extractTimeout = 60 * time.Second

// searchStrategy is one backend query form tried during Search.
type searchStrategy struct {
	name   string
	source music.Source
	// build renders the yt-dlp search URL for a query and result cap.
	build func(query string, limit int) string
}

// Strategies run in priority order until the result cap is filled. The
// primary backend is queried directly, then through the fallback engine
// scoped to it, then the fallback engine unscoped. A URL seen by an
// earlier strategy is dropped when a later one returns it again.
var searchStrategies = []searchStrategy{
	{
		name:   "soundcloud",
		source: music.SourceSoundCloud,
		build: func(q string, n int) string {
			return fmt.Sprintf("scsearch%d:%s", n, q)
		},
	},
	{
		name:   "fallback-scoped",
		source: music.SourceSoundCloud,
		build: func(q string, n int) string {
			return fmt.Sprintf("ytsearch%d:%s soundcloud", n, q)
		},
	},
	{
		name:   "fallback",
		source: music.SourceOther,
		build: func(q string, n int) string {
			return fmt.Sprintf("ytsearch%d:%s", n, q)
		},
	},
}

// YTDLP is a Provider backed by the yt-dlp binary.
type YTDLP struct{}

// NewYTDLP ensures the yt-dlp binary is available and returns the provider.
// Installation is best effort; a missing binary surfaces later as an
// ExtractionError on first use.
func NewYTDLP(ctx context.Context) *YTDLP {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		logger.PROV.Warn("yt-dlp install check failed",
			slog.String("event", "install.check"),
			slog.Any("error", err),
		)
	}
	return &YTDLP{}
}

// Search works through the strategies until limit unique tracks are
// collected. A failing strategy is logged and skipped; Search fails only
// when every strategy fails.
func (p *YTDLP) Search(ctx context.Context, query string, limit int) ([]music.Track, error) {
	if limit <= 0 {
		return nil, nil
	}

	var merged []music.Track
	var lastErr error
	failures := 0
	for _, strat := range searchStrategies {
		tracks, err := p.searchOne(ctx, strat, query, limit)
		if err != nil {
			failures++
			lastErr = &ExtractionError{Strategy: strat.name, Err: err}
			logger.PROV.Warn("search strategy failed",
				slog.String("event", "search.strategy"),
				slog.String("strategy", strat.name),
				slog.String("query", logger.Sanitize(query)),
				slog.Any("error", err),
			)
			continue
		}
		logger.PROV.Debug("search strategy done",
			slog.String("event", "search.strategy"),
			slog.String("strategy", strat.name),
			slog.Int("results", len(tracks)),
		)
		merged = mergeResults(limit, merged, tracks)
		if len(merged) >= limit {
			break
		}
	}

	if failures == len(searchStrategies) {
		return nil, lastErr
	}
	return merged, nil
}

func (p *YTDLP) searchOne(ctx context.Context, strat searchStrategy, query string, limit int) ([]music.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	dl := ytdlp.New().
		SkipDownload().
		FlatPlaylist().
		DumpSingleJSON().
		IgnoreErrors()

	result, err := dl.Run(ctx, strat.build(query, limit))
	if err != nil {
		return nil, err
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, err
	}
	return tracksFromInfo(infos, strat.source), nil
}

// tracksFromInfo flattens extractor output into tracks. Search queries
// come back as a playlist entry wrapping the hits; direct hits appear at
// the top level. Entries without a usable URL are dropped.
func tracksFromInfo(infos []*ytdlp.ExtractedInfo, source music.Source) []music.Track {
	var tracks []music.Track
	for _, info := range infos {
		if info == nil {
			continue
		}
		if len(info.Entries) > 0 {
			tracks = append(tracks, tracksFromInfo(info.Entries, source)...)
			continue
		}
		url := format.DerefString(info.WebpageURL, "")
		if url == "" {
			url = format.DerefString(info.URL, "")
		}
		if url == "" {
			continue
		}
		tracks = append(tracks, music.Track{
			Title:       format.DerefString(info.Title, ""),
			Uploader:    format.DerefString(info.Uploader, ""),
			DurationSec: int(format.DerefFloat64(info.Duration, 0)),
			URL:         url,
			Source:      source,
		})
	}
	return tracks
}

// ProbeSize extracts metadata for url and reports the announced audio
// size. Backends that do not announce a size yield 0.
func (p *YTDLP) ProbeSize(ctx context.Context, url string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	dl := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoPlaylist().
		Format("bestaudio/best")

	result, err := dl.Run(ctx, url)
	if err != nil {
		return 0, &ExtractionError{Strategy: "probe", Err: err}
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return 0, &ExtractionError{Strategy: "probe", Err: err}
	}
	for _, info := range infos {
		if info == nil {
			continue
		}
		if size := int64(format.DerefInt(info.FileSize, 0)); size > 0 {
			return size, nil
		}
		if size := int64(format.DerefInt(info.FileSizeApprox, 0)); size > 0 {
			return size, nil
		}
	}
	return 0, nil
}

// Fetch downloads the track's best audio into destDir as mp3 and returns
// the path of the produced file.
func (p *YTDLP) Fetch(ctx context.Context, url, destDir string) (string, error) {
	started := time.Now()

	dl := ytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		NoPlaylist().
		RestrictFilenames().
		ForceOverwrites().
		Output(destDir + "/%(title)s.%(ext)s")

	result, err := dl.Run(ctx, url)
	if err != nil {
		return "", &ExtractionError{Strategy: "download", Err: err}
	}

	path := downloadedFile(result)
	if path == "" {
		return "", &ExtractionError{Strategy: "download", Err: fmt.Errorf("no output file reported")}
	}

	logger.PROV.Info("track fetched",
		slog.String("event", "fetch"),
		slog.String("url", url),
		slog.Duration("took", logger.RoundMS(logger.Took(started))),
	)
	return path, nil
}

func downloadedFile(result *ytdlp.Result) string {
	infos, err := result.GetExtractedInfo()
	if err != nil {
		return ""
	}
	for _, info := range infos {
		if info == nil {
			continue
		}
		if name := format.DerefString(info.Filename, ""); name != "" {
			return name
		}
	}
	return ""
}
