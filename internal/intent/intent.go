// Package intent carries inbound lighting intents from the voice-command
// collaborator onto the gateway client. An intent names a room and whether
// it should be on, and at what level; spoken phrases are reduced to that
// shape by keyword matching.
package intent

import (
	"context"
	"strings"
)

// Intent is the structured command consumed from the voice collaborator.
// It maps 1:1 onto the client's room operations.
type Intent struct {
	Room   string
	Level  int
	TurnOn bool
}

// Levels assigned to recognized modes.
const (
	fullLevel = 100
	dimLevel  = 35
)

// Keyword sets for the three recognized modes.
var (
	onWords  = []string{"on", "full"}
	offWords = []string{"off", "dark", "darkness"}
	dimWords = []string{"dim", "half"}
)

// ParseUtterance reduces a spoken phrase to an intent for the given room.
// Off wins over on and dim when a phrase matches several sets. Returns false
// when no keyword matches.
func ParseUtterance(room, text string) (Intent, bool) {
	words := strings.Fields(strings.ToLower(text))

	if containsAny(words, offWords) {
		return Intent{Room: room, TurnOn: false}, true
	}
	if containsAny(words, onWords) {
		return Intent{Room: room, Level: fullLevel, TurnOn: true}, true
	}
	if containsAny(words, dimWords) {
		return Intent{Room: room, Level: dimLevel, TurnOn: true}, true
	}
	return Intent{}, false
}

func containsAny(words, set []string) bool {
	for _, w := range words {
		for _, s := range set {
			if w == s {
				return true
			}
		}
	}
	return false
}

// Controller is the slice of the gateway client intents act on.
type Controller interface {
	TurnOnRoomWithLevelByName(ctx context.Context, name string, level int) error
	TurnOffRoomByName(ctx context.Context, name string) error
}

// Dispatch applies one intent to the controller.
func Dispatch(ctx context.Context, c Controller, in Intent) error {
	if in.TurnOn {
		return c.TurnOnRoomWithLevelByName(ctx, in.Room, in.Level)
	}
	return c.TurnOffRoomByName(ctx, in.Room)
}
