package common

import (
	"fmt"
	"strings"
	"time"

	"casinobot/wagering"
)

// FormatBalance formats a chip amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	str := fmt.Sprintf("%d", balance)
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDelta formats a signed chip change, e.g. "+1,200" or "-50"
func FormatDelta(delta int64) string {
	if delta > 0 {
		return "+" + FormatBalance(delta)
	}
	return FormatBalance(delta)
}

// FormatCooldownHours turns remaining seconds into whole hours, rounded up
func FormatCooldownHours(secondsRemaining int64) int64 {
	if secondsRemaining <= 0 {
		return 0
	}
	return (secondsRemaining + 3599) / 3600
}

// FormatReels renders the three slot symbols as emoji
func FormatReels(reels [3]string) string {
	parts := make([]string, len(reels))
	for i, r := range reels {
		parts[i] = wagering.Symbol(r).Emoji()
	}
	return strings.Join(parts, " | ")
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
