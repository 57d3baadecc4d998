package daily

import (
	"time"

	"casinobot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /daily command
type Feature struct {
	casino   service.CasinoService
	cooldown time.Duration
}

// New creates the daily feature. cooldown is only used to show the next claim time.
func New(casino service.CasinoService, cooldown time.Duration) *Feature {
	return &Feature{
		casino:   casino,
		cooldown: cooldown,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleDaily(s, i)
}
