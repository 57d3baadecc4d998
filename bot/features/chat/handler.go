package chat

import (
	"context"
	"errors"

	"casinobot/llm"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleMessage(s *discordgo.Session, m *discordgo.Message, botID string) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if m.ChannelID != f.channelID {
		return
	}

	content := llm.NormalizeContent(llm.StripMentions(m.Content, botID), len(m.Attachments), len(m.StickerItems))
	prompt := llm.Prompt{
		UserName: displayName(m),
		Content:  content,
	}

	log.WithFields(log.Fields{
		"channelID": m.ChannelID,
		"userID":    m.Author.ID,
	}).Debug("Queueing chat reply")

	err := f.pool.Submit(context.Background(), prompt, func(reply string, err error) {
		outcome := OutcomeOK
		if err != nil {
			reply = llm.ErrorReply
			outcome = OutcomeError
		}
		f.send(s, m, reply, outcome)
	})
	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, llm.ErrQueueFull) {
			outcome = OutcomeQueueFull
		}
		log.WithFields(log.Fields{
			"userID": m.Author.ID,
			"error":  err,
		}).Warn("Chat reply not queued")
		f.send(s, m, llm.ErrorReply, outcome)
	}
}

func (f *Feature) send(s *discordgo.Session, m *discordgo.Message, content, outcome string) {
	f.observer.ObserveChatReply(outcome)
	if err := f.reply(s, m, content); err != nil {
		log.WithFields(log.Fields{
			"channelID": m.ChannelID,
			"messageID": m.ID,
			"error":     err,
		}).Error("Failed to send chat reply")
	}
}

func displayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
