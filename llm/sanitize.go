package llm

import (
	"regexp"
	"strings"
)

const zeroWidthSpace = "\u200b"

// Placeholders for messages without text
const (
	AttachmentPlaceholder = "Sent an attachment."
	StickerPlaceholder    = "Sent a sticker."
	EmptyPlaceholder      = "..."
)

// Sanitize breaks mass pings and trims whitespace
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "@everyone", "@"+zeroWidthSpace+"everyone")
	text = strings.ReplaceAll(text, "@here", "@"+zeroWidthSpace+"here")
	return strings.TrimSpace(text)
}

// StripMentions removes <@id> and <@!id> mentions of the bot
func StripMentions(text, botID string) string {
	if botID == "" {
		return strings.TrimSpace(text)
	}
	pattern := regexp.MustCompile(`<@!?` + regexp.QuoteMeta(botID) + `>\s*`)
	return strings.TrimSpace(pattern.ReplaceAllString(text, ""))
}

// NormalizeContent fills in a placeholder for messages that carry no text
func NormalizeContent(content string, attachments, stickers int) string {
	content = strings.TrimSpace(content)
	switch {
	case content != "":
		return content
	case attachments > 0:
		return AttachmentPlaceholder
	case stickers > 0:
		return StickerPlaceholder
	default:
		return EmptyPlaceholder
	}
}
