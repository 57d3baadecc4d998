package history

import (
	"casinobot/service"

	"github.com/bwmarrin/discordgo"
)

const defaultLimit = 10

// Feature handles the /history command
type Feature struct {
	casino service.CasinoService
}

func New(casino service.CasinoService) *Feature {
	return &Feature{
		casino: casino,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleHistory(s, i)
}
