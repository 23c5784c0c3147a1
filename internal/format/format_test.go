package format

import (
	"strings"
	"testing"
	"time"

	"chatrelay/internal/models"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		platform models.Platform
		expected string
	}{
		{
			name:     "telegram escapes underscores",
			text:     "ap_site_01",
			platform: models.PlatformTelegram,
			expected: `ap\_site\_01`,
		},
		{
			name:     "telegram without underscores unchanged",
			text:     "plain text",
			platform: models.PlatformTelegram,
			expected: "plain text",
		},
		{
			name:     "discord never escapes",
			text:     "ap_site_01",
			platform: models.PlatformDiscord,
			expected: "ap_site_01",
		},
		{
			name:     "unknown platform passes through",
			text:     "a_b",
			platform: models.Platform("slack"),
			expected: "a_b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Escape(tt.text, tt.platform))
		})
	}
}

func TestFormatTimestampRendering(t *testing.T) {
	ms := int64(1700000000000)
	expected := time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05") + " UTC"

	event := models.EventPayload{
		Site:       "A",
		Timestamp:  int64Ptr(ms),
		Controller: "c1",
	}

	out := Format(event, models.PlatformTelegram)
	assert.Contains(t, out, "*Timestamp*: "+expected)
	// Known value, pinned so a timezone regression is obvious.
	assert.Contains(t, out, "2023-11-14 22:13:20 UTC")
}

func TestFormatMissingTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		timestamp *int64
	}{
		{name: "absent", timestamp: nil},
		{name: "zero", timestamp: int64Ptr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Format(models.EventPayload{Timestamp: tt.timestamp}, models.PlatformTelegram)
			assert.Contains(t, out, "*Timestamp*: N/A")
		})
	}
}

func TestFormatLabelsPerPlatform(t *testing.T) {
	event := models.EventPayload{
		Site:        "Main Office",
		Description: "AP offline",
		Controller:  "ctrl-1",
	}

	telegram := Format(event, models.PlatformTelegram)
	assert.Contains(t, telegram, "*Site*: Main Office")
	assert.Contains(t, telegram, "*Description*: AP offline")
	assert.Contains(t, telegram, "*Controller*: ctrl-1")

	discord := Format(event, models.PlatformDiscord)
	assert.Contains(t, discord, "**Site**: Main Office")
	assert.Contains(t, discord, "**Description**: AP offline")
	assert.Contains(t, discord, "**Controller**: ctrl-1")
}

func TestFormatMissingFieldsRenderNA(t *testing.T) {
	out := Format(models.EventPayload{}, models.PlatformDiscord)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "**Site**: N/A", lines[0])
	assert.Equal(t, "**Description**: N/A", lines[1])
	assert.Equal(t, "**Controller**: N/A", lines[2])
	assert.Equal(t, "**Timestamp**: N/A", lines[3])
}

func TestFormatEventLines(t *testing.T) {
	event := models.EventPayload{
		Site: "site_a",
		Text: []interface{}{"AP ap_1 disconnected", "AP ap_2 reconnected"},
	}

	telegram := Format(event, models.PlatformTelegram)
	assert.Contains(t, telegram, "*Events:*")
	assert.Contains(t, telegram, `- AP ap\_1 disconnected`)
	assert.Contains(t, telegram, `- AP ap\_2 reconnected`)

	discord := Format(event, models.PlatformDiscord)
	assert.Contains(t, discord, "**Events:**")
	assert.Contains(t, discord, "- AP ap_1 disconnected")
}

func TestFormatNoEventsHeaderWhenEmpty(t *testing.T) {
	out := Format(models.EventPayload{Site: "A"}, models.PlatformTelegram)
	assert.NotContains(t, out, "Events:")
}

func TestFormatCoercesNonStringValues(t *testing.T) {
	event := models.EventPayload{
		Site:        float64(42),
		Description: true,
		Controller:  float64(1.5),
	}

	out := Format(event, models.PlatformDiscord)
	assert.Contains(t, out, "**Site**: 42")
	assert.Contains(t, out, "**Description**: true")
	assert.Contains(t, out, "**Controller**: 1.5")
}

func TestFormatIsDeterministic(t *testing.T) {
	event := models.EventPayload{
		Site:      "A",
		Timestamp: int64Ptr(1700000000000),
		Text:      []interface{}{"one", "two"},
	}

	first := Format(event, models.PlatformTelegram)
	second := Format(event, models.PlatformTelegram)
	assert.Equal(t, first, second)
}
