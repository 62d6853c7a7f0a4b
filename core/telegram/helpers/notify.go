package helpers

import (
	"log/slog"

	"github.com/soundpull/soundpull/core/logger"

	tele "gopkg.in/telebot.v4"
)

// NotifyEdit performs a best-effort edit of msg for cosmetic updates such
// as progress checkpoints. Transport failures (rate-limited edits, stale
// messages) are logged at debug level and swallowed; callers must use it
// only for notifications whose loss is acceptable, never for terminal
// outcomes.
func NotifyEdit(c tele.Context, msg tele.Editable, text string, markup ...*tele.ReplyMarkup) {
	var err error
	if len(markup) > 0 && markup[0] != nil {
		_, err = c.Bot().Edit(msg, text, markup[0])
	} else {
		_, err = c.Bot().Edit(msg, text)
	}
	if err != nil {
		ctx := BuildContext(c)
		logger.Debug(ctx, "tg", "notify.edit.dropped",
			slog.String("err", logger.SanitizeLimit(err.Error(), 128)),
		)
	}
}
