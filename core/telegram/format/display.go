package format

import "strings"

var inlineMarkerReplacer = strings.NewReplacer("*", "", "_", "", "`", "")

// StripInlineMarkers removes Markdown inline markers from display text so
// titles containing them do not break message formatting.
func StripInlineMarkers(text string) string {
	return inlineMarkerReplacer.Replace(text)
}

// Ellipsize caps text at max visible runes, appending "..." when truncated.
// It never modifies text that already fits.
func Ellipsize(text string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
