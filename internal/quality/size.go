package quality

import (
	"fmt"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// FormatFilesize renders a size suffix for option labels, or "" when the
// size is unknown
func FormatFilesize(bytes int64) string {
	switch {
	case bytes <= 0:
		return ""
	case bytes < model.MiB:
		return fmt.Sprintf(" - %.1fKB", float64(bytes)/model.KiB)
	case bytes < model.GiB:
		return fmt.Sprintf(" - %.1fMB", float64(bytes)/model.MiB)
	default:
		return fmt.Sprintf(" - %.1fGB", float64(bytes)/model.GiB)
	}
}
