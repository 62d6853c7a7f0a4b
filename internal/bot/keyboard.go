package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/soundpull/soundpull/core/telegram/keyboard"
	"github.com/soundpull/soundpull/internal/paging"
)

// Callback keys routed through the registry. Payloads are plain decimal
// numbers: a page index for cbPage, an absolute result index for cbSelect.
const (
	cbPage     = "page"
	cbSelect   = "dl"
	cbPageInfo = "pageinfo"
	cbCancel   = "cancel"
)

// resultsMarkup builds the keyboard for one results page: a row per
// track, a navigation row, and a cancel row. Select buttons carry the
// track's absolute index so the keyboard stays valid across page flips.
func resultsMarkup(page paging.Page) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(page.Items)+2)
	for _, item := range page.Items {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   paging.ButtonLabel(item),
			Unique: cbSelect,
			Data:   strconv.Itoa(item.AddressIndex),
		}})
	}

	if page.Count > 1 {
		nav := make([]keyboard.InlineBtn, 0, 3)
		if page.HasPrev {
			nav = append(nav, keyboard.InlineBtn{
				Text:   "⬅️",
				Unique: cbPage,
				Data:   strconv.Itoa(page.Index - 1),
			})
		}
		nav = append(nav, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%d/%d", page.Index+1, page.Count),
			Unique: cbPageInfo,
			Data:   "",
		})
		if page.HasNext {
			nav = append(nav, keyboard.InlineBtn{
				Text:   "➡️",
				Unique: cbPage,
				Data:   strconv.Itoa(page.Index + 1),
			})
		}
		rows = append(rows, nav)
	}

	rows = append(rows, []keyboard.InlineBtn{{
		Text:   "❌ Cancel search",
		Unique: cbCancel,
		Data:   "",
	}})

	return keyboard.InlineButtonsRows(rows...)
}
