// Package chat answers messages in one channel with generated cheeky replies
package chat

import (
	"context"

	"casinobot/bot/common"
	"casinobot/llm"

	"github.com/bwmarrin/discordgo"
)

// Reply outcomes for metrics
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeQueueFull = "queue_full"
)

// Submitter queues a prompt for generation
type Submitter interface {
	Submit(ctx context.Context, prompt llm.Prompt, done llm.ResultFunc) error
}

// Observer records reply outcomes
type Observer interface {
	ObserveChatReply(outcome string)
}

type replyFunc func(s *discordgo.Session, m *discordgo.Message, content string) error

// Feature handles MessageCreate events in the allowed channel
type Feature struct {
	pool      Submitter
	channelID string
	observer  Observer
	reply     replyFunc
}

// New creates the chat feature. observer may be nil.
func New(pool Submitter, channelID string, observer Observer) *Feature {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Feature{
		pool:      pool,
		channelID: channelID,
		observer:  observer,
		reply:     common.ReplyWithoutPing,
	}
}

// HandleMessage is registered as a discordgo MessageCreate handler
func (f *Feature) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	var botID string
	if s != nil && s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	f.handleMessage(s, m.Message, botID)
}

type noopObserver struct{}

func (noopObserver) ObserveChatReply(string) {}
