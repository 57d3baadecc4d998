package common

import (
	"errors"
	"testing"
	"time"

	"casinobot/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1500, "-1,500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatBalance(tt.input))
	}
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+1,200", FormatDelta(1200))
	assert.Equal(t, "-50", FormatDelta(-50))
	assert.Equal(t, "0", FormatDelta(0))
}

func TestFormatCooldownHours(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		hours   int64
	}{
		{"one second left", 1, 1},
		{"exactly one hour", 3600, 1},
		{"just over one hour", 3601, 2},
		{"almost a day", 86399, 24},
		{"nothing left", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hours, FormatCooldownHours(tt.seconds))
		})
	}
}

func TestFormatReels(t *testing.T) {
	assert.Equal(t, "🍒 | 🍒 | 🍋", FormatReels([3]string{"cherry", "cherry", "lemon"}))
	assert.Equal(t, "💎 | ❔ | ⭐", FormatReels([3]string{"diamond", "bogus", "star"}))
}

func TestFormatDiscordTimestamp(t *testing.T) {
	assert.Equal(t, "<t:1700000000:R>", FormatDiscordTimestamp(time.Unix(1_700_000_000, 0), "R"))
}

func TestFromCommandError(t *testing.T) {
	t.Run("not eligible rounds hours up", func(t *testing.T) {
		botErr := FromCommandError("daily", &service.CommandError{Reason: service.ReasonNotEligibleYet, SecondsRemaining: 3601})
		assert.Contains(t, botErr.UserMessage, "2 hour(s)")
		assert.Nil(t, botErr.Err)
	})

	t.Run("invalid bet", func(t *testing.T) {
		botErr := FromCommandError("coinflip", &service.CommandError{Reason: service.ReasonInvalidBet})
		assert.Contains(t, botErr.UserMessage, "Invalid bet")
	})

	t.Run("invalid choice", func(t *testing.T) {
		botErr := FromCommandError("coinflip", &service.CommandError{Reason: service.ReasonInvalidChoice})
		assert.Equal(t, "Pick either heads or tails.", botErr.UserMessage)
	})

	t.Run("storage error is hidden", func(t *testing.T) {
		cause := errors.New("connection reset")
		botErr := FromCommandError("slots", &service.CommandError{Reason: service.ReasonStorageError, Err: cause})
		assert.Equal(t, "Something went wrong. Please try again.", botErr.UserMessage)
		assert.ErrorIs(t, botErr, cause)
	})

	t.Run("unknown error is a system error", func(t *testing.T) {
		botErr := FromCommandError("balance", errors.New("boom"))
		require.NotNil(t, botErr.Err)
		assert.Equal(t, "balance failed: boom", botErr.Error())
	})
}

func TestUserIDAndDisplayName(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{Nick: "Lucky", User: &discordgo.User{ID: "11", Username: "lucky_user"}},
	}}
	assert.Equal(t, "11", UserID(guild))
	assert.Equal(t, "Lucky", DisplayName(guild))

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "22", Username: "dm_user"},
	}}
	assert.Equal(t, "22", UserID(dm))
	assert.Equal(t, "dm_user", DisplayName(dm))
}

func TestStringOption(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "coinflip",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "bet", Type: discordgo.ApplicationCommandOptionString, Value: "250"},
				{Name: "choice", Type: discordgo.ApplicationCommandOptionString, Value: "heads"},
			},
		},
	}}

	bet, ok := StringOption(i, "bet")
	assert.True(t, ok)
	assert.Equal(t, "250", bet)

	_, ok = StringOption(i, "missing")
	assert.False(t, ok)
}
