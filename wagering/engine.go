package wagering

import (
	"fmt"
	"strconv"
	"strings"
)

// Face is one side of a coin
type Face string

const (
	Heads Face = "heads"
	Tails Face = "tails"
)

var faces = [2]Face{Heads, Tails}

// ParseFace parses a user supplied coin side
func ParseFace(raw string) (Face, error) {
	switch Face(strings.ToLower(strings.TrimSpace(raw))) {
	case Heads:
		return Heads, nil
	case Tails:
		return Tails, nil
	}
	return "", fmt.Errorf("invalid coin side %q", raw)
}

// Valid reports whether f is heads or tails
func (f Face) Valid() bool {
	return f == Heads || f == Tails
}

// Symbol is one slot machine reel symbol
type Symbol string

const (
	Cherry  Symbol = "cherry"
	Lemon   Symbol = "lemon"
	Bell    Symbol = "bell"
	Star    Symbol = "star"
	Diamond Symbol = "diamond"
)

// Alphabet is the fixed reel alphabet, every symbol equally likely
var Alphabet = [5]Symbol{Cherry, Lemon, Bell, Star, Diamond}

var symbolEmoji = map[Symbol]string{
	Cherry:  "🍒",
	Lemon:   "🍋",
	Bell:    "🔔",
	Star:    "⭐",
	Diamond: "💎",
}

// Emoji renders the symbol for chat output
func (s Symbol) Emoji() string {
	if e, ok := symbolEmoji[s]; ok {
		return e
	}
	return "❔"
}

const (
	tripleMultiplier int64 = 5
	pairMultiplier   int64 = 2
)

// CoinflipOutcome is the result of one coinflip
type CoinflipOutcome struct {
	Face  Face
	Won   bool
	Delta int64
}

// SlotsOutcome is the result of one spin
type SlotsOutcome struct {
	Reels      [3]Symbol
	Multiplier int64
	Delta      int64
}

// Engine computes game outcomes. It never touches storage.
type Engine struct {
	rng RandomSource
}

// NewEngine creates an engine drawing from rng (DefaultSource when nil)
func NewEngine(rng RandomSource) *Engine {
	if rng == nil {
		rng = DefaultSource()
	}
	return &Engine{rng: rng}
}

// ClampBet returns the effective bet: 0 for non-positive requests, otherwise
// the request capped at the current balance.
func ClampBet(requested, balance int64) int64 {
	if requested <= 0 || balance <= 0 {
		return 0
	}
	if requested > balance {
		return balance
	}
	return requested
}

// ParseBet parses a raw bet, returning 0 when it is not a valid integer
func ParseBet(raw string) int64 {
	bet, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return bet
}

// Coinflip plays a fair double-or-nothing flip for an already clamped bet
func (e *Engine) Coinflip(bet int64, choice Face) CoinflipOutcome {
	face := faces[e.rng.IntN(len(faces))]
	won := face == choice
	delta := -bet
	if won {
		delta = bet
	}
	return CoinflipOutcome{Face: face, Won: won, Delta: delta}
}

// Slots spins three independent reels for an already clamped bet
func (e *Engine) Slots(bet int64) SlotsOutcome {
	var reels [3]Symbol
	for i := range reels {
		reels[i] = Alphabet[e.rng.IntN(len(Alphabet))]
	}
	multiplier := SlotsMultiplier(reels)
	return SlotsOutcome{
		Reels:      reels,
		Multiplier: multiplier,
		Delta:      bet*multiplier - bet,
	}
}

// SlotsMultiplier returns 5 for three of a kind, 2 for any pair, 0 otherwise
func SlotsMultiplier(reels [3]Symbol) int64 {
	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a == b && b == c:
		return tripleMultiplier
	case a == b || b == c || a == c:
		return pairMultiplier
	default:
		return 0
	}
}
