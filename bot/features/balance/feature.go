package balance

import (
	"casinobot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /balance command
type Feature struct {
	casino service.CasinoService
}

func New(casino service.CasinoService) *Feature {
	return &Feature{
		casino: casino,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBalance(s, i)
}
