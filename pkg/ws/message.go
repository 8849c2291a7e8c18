package ws

import (
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
)

// Message is the envelope of every frame sent over a socket.
type Message struct {
	Type  string         `json:"type"`
	Value map[string]any `json:"value"`
}

// NewMessage flattens a struct value into the message. Field names follow
// the `structs` tags of the value.
func NewMessage(t string, value any) Message {
	msg := Message{Type: t, Value: map[string]any{}}
	if value == nil {
		return msg
	}

	if m, ok := value.(map[string]any); ok {
		msg.Value = m
		return msg
	}

	if structs.IsStruct(value) {
		msg.Value = structs.Map(value)
	}

	return msg
}

// Decode fills out from the message value, matching the `mapstructure` tags
// of out.
func (m Message) Decode(out any) error {
	return mapstructure.Decode(m.Value, out)
}
