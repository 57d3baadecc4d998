package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlashCommands(t *testing.T) {
	commands := slashCommands()

	names := make([]string, 0, len(commands))
	byName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range commands {
		names = append(names, cmd.Name)
		byName[cmd.Name] = cmd
	}
	assert.ElementsMatch(t, []string{"balance", "daily", "coinflip", "slots", "history"}, names)

	coinflip := byName["coinflip"]
	require.Len(t, coinflip.Options, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionString, coinflip.Options[0].Type)
	assert.Equal(t, "bet", coinflip.Options[0].Name)
	require.Len(t, coinflip.Options[1].Choices, 2)
	assert.Equal(t, "heads", coinflip.Options[1].Choices[0].Value)
	assert.Equal(t, "tails", coinflip.Options[1].Choices[1].Value)

	slots := byName["slots"]
	require.Len(t, slots.Options, 1)
	assert.True(t, slots.Options[0].Required)
}
