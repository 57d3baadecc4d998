package common

import (
	"errors"
	"fmt"

	"casinobot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError separates what the user sees from what gets logged
type BotError struct {
	UserMessage string
	LogMessage  string
	Err         error
}

func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError is an expected rejection shown to the user as is
func NewUserError(message string) *BotError {
	return &BotError{UserMessage: message, LogMessage: message}
}

// NewSystemError hides the cause from the user behind a generic message
func NewSystemError(logMessage string, err error) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again.",
		LogMessage:  logMessage,
		Err:         err,
	}
}

// FromCommandError maps a casino service failure to what the user should read
func FromCommandError(command string, err error) *BotError {
	var cmdErr *service.CommandError
	if !errors.As(err, &cmdErr) {
		return NewSystemError(command+" failed", err)
	}

	switch cmdErr.Reason {
	case service.ReasonInvalidBet:
		return NewUserError("Invalid bet. Bet a positive whole number of chips, and make sure you have chips left.")
	case service.ReasonInvalidChoice:
		return NewUserError("Pick either heads or tails.")
	case service.ReasonNotEligibleYet:
		return NewUserError(fmt.Sprintf("You already claimed your daily reward. Come back in about %d hour(s).",
			FormatCooldownHours(cmdErr.SecondsRemaining)))
	default:
		return NewSystemError(command+" failed on storage", err)
	}
}

// HandleError logs system errors and sends the user message as an ephemeral reply
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, botErr *BotError) {
	if botErr.Err != nil {
		log.WithFields(log.Fields{
			"userID": UserID(i),
			"error":  botErr.Err,
		}).Error(botErr.LogMessage)
	}
	RespondWithError(s, i, botErr.UserMessage)
}
