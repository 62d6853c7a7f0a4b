package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackDataRawEncoding(t *testing.T) {
	cb := &tele.Callback{Data: "\fdl|7"}
	unique, payload := ParseCallbackData(cb)
	assert.Equal(t, "dl", unique)
	assert.Equal(t, "7", payload)
}

func TestParseCallbackDataDecodedButton(t *testing.T) {
	cb := &tele.Callback{Unique: "page", Data: "2"}
	unique, payload := ParseCallbackData(cb)
	assert.Equal(t, "page", unique)
	assert.Equal(t, "2", payload)
}

func TestParseCallbackDataEmptyPayload(t *testing.T) {
	cb := &tele.Callback{Data: "\fcancel"}
	unique, payload := ParseCallbackData(cb)
	assert.Equal(t, "cancel", unique)
	assert.Empty(t, payload)
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	assert.Empty(t, unique)
	assert.Empty(t, payload)
}
