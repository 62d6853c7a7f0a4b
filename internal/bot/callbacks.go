package bot

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	tele "gopkg.in/telebot.v4"

	"github.com/soundpull/soundpull/core/logger"
	coretelegram "github.com/soundpull/soundpull/core/telegram"
	"github.com/soundpull/soundpull/core/telegram/callbacks"
	"github.com/soundpull/soundpull/core/telegram/helpers"
	"github.com/soundpull/soundpull/internal/download"
	"github.com/soundpull/soundpull/internal/music"
	"github.com/soundpull/soundpull/internal/paging"
)

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	var merr *multierror.Error
	merr = multierror.Append(merr,
		reg.RegisterCallback(cbPage, a.cbPageFlip),
		reg.RegisterCallback(cbSelect, a.cbSelectTrack),
		reg.RegisterCallback(cbPageInfo, a.cbPageIndicator),
		reg.RegisterCallback(cbCancel, a.cbCancelSearch),
	)
	return merr.ErrorOrNil()
}

// cbPageFlip re-renders the results message at the requested page. The
// session itself is untouched except for the cursor.
func (a *App) cbPageFlip(c tele.Context) error {
	sess, ok := a.sessionOrExpired(c)
	if !ok {
		return nil
	}

	target, err := callbacks.PayloadInt(c)
	if err != nil {
		return nil
	}
	if err := a.store.SetPage(c.Sender().ID, target); err != nil {
		// Stale button after a newer search shrank the result set.
		target = sess.CurrentPage
	}

	page := paging.BuildPage(sess.Results, target, a.pageSize())
	return helpers.Edit(c, resultsText(sess.Query, page), resultsMarkup(page))
}

// cbPageIndicator is the inert page counter between the arrows.
func (a *App) cbPageIndicator(tele.Context) error {
	return nil
}

// cbCancelSearch clears the session, sweeps the user's files, and
// replaces the results keyboard with a farewell.
func (a *App) cbCancelSearch(c tele.Context) error {
	user := c.Sender().ID
	a.store.Clear(user)
	if err := a.ctrl.CleanupUser(user); err != nil {
		logger.TG.Warn("cancel cleanup failed",
			slog.String("event", "cancel.cleanup"),
			slog.Int64("user_id", user),
			slog.Any("error", err),
		)
	}
	return helpers.Edit(c, msgCancelled)
}

// cbSelectTrack runs the full download lifecycle for the chosen result.
// Progress goes to a dedicated message so the results keyboard stays
// usable; the session survives so more tracks can be picked afterwards.
func (a *App) cbSelectTrack(c tele.Context) error {
	user := c.Sender().ID

	sess, ok := a.sessionOrExpired(c)
	if !ok {
		return nil
	}

	index, err := callbacks.PayloadInt(c)
	if err != nil {
		return nil
	}
	track, err := a.store.Track(user, index)
	if err != nil {
		_ = helpers.Edit(c, msgSessionGone)
		return nil
	}

	progress, err := c.Bot().Send(c.Recipient(), progressText(track, 0))
	if err != nil {
		if recipientUnreachable(err) {
			return nil
		}
		return err
	}

	notify := func(percent int) {
		helpers.NotifyEdit(c, progress, progressText(track, percent))
	}

	deliver := func(_ context.Context, path string) error {
		audio := &tele.Audio{
			File:      tele.FromDisk(path),
			Title:     track.Title,
			Performer: track.Uploader,
			FileName:  filepath.Base(path),
		}
		_, sendErr := c.Bot().Send(c.Recipient(), audio)
		return sendErr
	}

	// The lifecycle blocks for the whole transfer, so it runs off the
	// update loop; other users' events keep flowing meanwhile.
	ctx := helpers.BuildContext(c)
	go a.runDownload(ctx, c, progress, user, sess.Query, track, notify, deliver)
	return nil
}

func (a *App) runDownload(ctx context.Context, c tele.Context, progress *tele.Message, user int64, query string, track music.Track, notify download.Notifier, deliver download.Deliverer) {
	defer func() {
		if r := recover(); r != nil {
			logger.TG.Error("download goroutine panic",
				slog.String("event", "panic"),
				slog.Int64("user_id", user),
				slog.Any("panic", r),
			)
		}
	}()

	task, runErr := a.ctrl.Run(ctx, user, track, notify, deliver)
	if runErr != nil {
		if recipientUnreachable(runErr) {
			logger.TG.Info("recipient unreachable, delivery dropped",
				slog.String("event", "deliver.unreachable"),
				slog.Int64("user_id", user),
			)
			return
		}
		a.editOrWarn(c, progress, userErrorText(runErr, a.cfg.Download.MaxBytes()), user)
		return
	}

	a.hist.Record(ctx, user, query, track, task.SizeBytes)

	helpers.NotifyEdit(c, progress, progressDoneText(track))
}
