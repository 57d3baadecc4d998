package games

import (
	"casinobot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles /coinflip and /slots
type Feature struct {
	casino service.CasinoService
}

func New(casino service.CasinoService) *Feature {
	return &Feature{
		casino: casino,
	}
}

// HandleCoinflip handles the /coinflip command
func (f *Feature) HandleCoinflip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleCoinflip(s, i)
}

// HandleSlots handles the /slots command
func (f *Feature) HandleSlots(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleSlots(s, i)
}
