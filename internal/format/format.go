// Package format renders inbound webhook events into platform-specific
// chat messages. All functions are pure.
package format

import (
	"fmt"
	"strings"
	"time"

	"chatrelay/internal/models"
)

const missingValue = "N/A"

// Escape escapes characters that would break the target platform's markup.
// Telegram messages are sent with literal Markdown parsing, so underscores
// in values must be backslash-escaped or they toggle emphasis. Discord and
// any other platform pass through unchanged.
func Escape(text string, platform models.Platform) string {
	if platform == models.PlatformTelegram {
		return strings.ReplaceAll(text, "_", `\_`)
	}
	return text
}

// Format renders an event payload as a chat message for the given platform.
// Discord gets bold labels, everything else italic; the schema is identical.
func Format(event models.EventPayload, platform models.Platform) string {
	lines := []string{
		line("Site", stringify(event.Site), platform),
		line("Description", stringify(event.Description), platform),
		line("Controller", stringify(event.Controller), platform),
		line("Timestamp", formatTimestamp(event.Timestamp), platform),
	}

	if len(event.Text) > 0 {
		lines = append(lines, label("Events:", platform))
		for _, entry := range event.Text {
			lines = append(lines, "- "+Escape(stringify(entry), platform))
		}
	}

	return strings.Join(lines, "\n")
}

func line(name, value string, platform models.Platform) string {
	return label(name, platform) + ": " + Escape(value, platform)
}

func label(name string, platform models.Platform) string {
	if platform == models.PlatformDiscord {
		return "**" + name + "**"
	}
	return "*" + name + "*"
}

// formatTimestamp renders a milliseconds-since-epoch value as UTC. Absent
// or zero timestamps render as N/A.
func formatTimestamp(ms *int64) string {
	if ms == nil || *ms == 0 {
		return missingValue
	}
	return time.UnixMilli(*ms).UTC().Format("2006-01-02 15:04:05") + " UTC"
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return missingValue
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; render integers without a
		// trailing fraction.
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
