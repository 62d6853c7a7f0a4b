package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	tele "gopkg.in/telebot.v4"

	"github.com/soundpull/soundpull/core/logger"
	coretelegram "github.com/soundpull/soundpull/core/telegram"
	"github.com/soundpull/soundpull/core/telegram/commands"
	"github.com/soundpull/soundpull/core/telegram/format"
	"github.com/soundpull/soundpull/core/telegram/helpers"
	"github.com/soundpull/soundpull/internal/paging"
	"github.com/soundpull/soundpull/internal/session"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "What this bot does",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "How to use the bot",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Drop the current search",
	})
	reg.RegisterCommand("/history", commands.Command{
		Handler:     a.handleHistory,
		Description: "Your recent downloads",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Delivery totals",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) handleStart(c tele.Context) error {
	return helpers.SendText(c, msgStart)
}

func (a *App) handleHelp(c tele.Context) error {
	return helpers.SendText(c, msgHelp)
}

// handleCancel drops the user's session and sweeps their working
// directory. Cancelling with nothing active is not an error.
func (a *App) handleCancel(c tele.Context) error {
	user := c.Sender().ID

	_, err := a.store.Get(user)
	hadSession := err == nil

	a.store.Clear(user)
	if cleanupErr := a.ctrl.CleanupUser(user); cleanupErr != nil {
		logger.TG.Warn("cancel cleanup failed",
			slog.String("event", "cancel.cleanup"),
			slog.Int64("user_id", user),
			slog.Any("error", cleanupErr),
		)
	}

	if !hadSession {
		return helpers.SendText(c, msgNothingToDo)
	}
	return helpers.SendText(c, msgCancelled)
}

func (a *App) handleHistory(c tele.Context) error {
	if a.hist == nil {
		return helpers.SendText(c, "History is not enabled on this bot.")
	}

	ctx := helpers.BuildContext(c)
	entries, err := a.hist.Recent(ctx, c.Sender().ID, 10)
	if err != nil {
		return helpers.SendText(c, "Couldn't load your history right now.")
	}
	if len(entries) == 0 {
		return helpers.SendText(c, "No downloads yet. Send me a track name to search.")
	}

	var b strings.Builder
	b.WriteString("🗂 Your recent downloads:\n")
	for _, e := range entries {
		title := format.Ellipsize(format.StripInlineMarkers(e.Title), 40)
		fmt.Fprintf(&b, "• %s — %s\n", title, humanize.Time(e.DeliveredAt))
	}
	return helpers.SendText(c, b.String())
}

func (a *App) handleStats(c tele.Context) error {
	if a.hist == nil {
		return helpers.SendText(c, "History is not enabled, no stats to show.")
	}

	ctx := helpers.BuildContext(c)
	stats, err := a.hist.Totals(ctx)
	if err != nil {
		return helpers.SendText(c, "Couldn't load stats right now.")
	}
	return helpers.SendText(c, fmt.Sprintf(
		"📊 Deliveries: %d\nUsers served: %d\nAudio shipped: %s",
		stats.Deliveries, stats.Users, humanize.Bytes(uint64(stats.TotalBytes)),
	))
}

// handleSearch is the free-text entry point: validate the query, run the
// provider search, store the session, and show page one.
func (a *App) handleSearch(c tele.Context) error {
	query := strings.TrimSpace(c.Text())
	user := c.Sender().ID

	if utf8.RuneCountInString(query) < a.cfg.Search.MinQueryLen {
		return helpers.SendText(c, fmt.Sprintf(msgQueryTooShort, a.cfg.Search.MinQueryLen))
	}

	ack, err := c.Bot().Send(c.Recipient(), msgSearching)
	if err != nil {
		if recipientUnreachable(err) {
			return nil
		}
		return err
	}

	// The provider call can take tens of seconds, so it runs off the
	// update loop; the ack message is edited in place when done.
	ctx := helpers.BuildContext(c)
	go a.runSearch(ctx, c, ack, user, query)
	return nil
}

func (a *App) runSearch(ctx context.Context, c tele.Context, ack *tele.Message, user int64, query string) {
	defer func() {
		if r := recover(); r != nil {
			logger.TG.Error("search goroutine panic",
				slog.String("event", "panic"),
				slog.Int64("user_id", user),
				slog.Any("panic", r),
			)
		}
	}()

	tracks, err := a.prov.Search(ctx, query, a.cfg.Search.Limit)
	if err != nil {
		logger.TG.Warn("search failed",
			slog.String("event", "search.fail"),
			slog.Int64("user_id", user),
			slog.String("query", logger.Sanitize(query)),
			slog.Any("error", err),
		)
		a.editOrWarn(c, ack, userErrorText(err, a.cfg.Download.MaxBytes()), user)
		return
	}
	if len(tracks) == 0 {
		a.editOrWarn(c, ack, fmt.Sprintf(msgNothingFound, format.StripInlineMarkers(query)), user)
		return
	}

	a.store.Put(user, query, tracks)

	page := paging.BuildPage(tracks, 0, a.pageSize())
	if _, err := c.Bot().Edit(ack, resultsText(query, page), resultsMarkup(page)); err != nil {
		logger.TG.Warn("results render failed",
			slog.String("event", "search.render"),
			slog.Int64("user_id", user),
			slog.Any("error", err),
		)
	}
}

// editOrWarn edits msg with a terminal outcome, logging when the notice
// could not be shown.
func (a *App) editOrWarn(c tele.Context, msg *tele.Message, text string, user int64) {
	if _, err := c.Bot().Edit(msg, text); err != nil {
		logger.TG.Warn("outcome notice not shown",
			slog.String("event", "notice.fail"),
			slog.Int64("user_id", user),
			slog.Any("error", err),
		)
	}
}

// sessionOrExpired loads the caller's session, replacing the stale
// keyboard with an expiry notice when it is gone.
func (a *App) sessionOrExpired(c tele.Context) (session.Session, bool) {
	sess, err := a.store.Get(c.Sender().ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			_ = helpers.Edit(c, msgSessionGone)
		}
		return session.Session{}, false
	}
	return sess, true
}
