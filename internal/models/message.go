package models

// Platform identifies the chat platform a message is destined for.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformDiscord  Platform = "discord"
)

// QueuedMessage is one pending (or delivered) chat message. Identity is by
// value: two messages with the same platform and body are indistinguishable,
// and queue removal matches every value-equal entry.
type QueuedMessage struct {
	Platform Platform `json:"platform"`
	Body     string   `json:"body"`
}

// EventPayload holds the fields the formatter extracts from an inbound
// webhook event. Site, Description and Controller keep their raw JSON value
// so non-string payloads can still be rendered.
type EventPayload struct {
	Site        interface{}
	Description interface{}
	Controller  interface{}
	Timestamp   *int64 // milliseconds since epoch
	Text        []interface{}
}

// EventPayloadFromMap extracts the known event fields from a decoded JSON
// body. Unknown keys are ignored; a non-list "text" value is dropped rather
// than rejected.
func EventPayloadFromMap(body map[string]interface{}) EventPayload {
	p := EventPayload{
		Site:        body["Site"],
		Description: body["description"],
		Controller:  body["Controller"],
	}

	if raw, ok := body["timestamp"]; ok {
		if ms, ok := numericMillis(raw); ok {
			p.Timestamp = &ms
		}
	}

	if list, ok := body["text"].([]interface{}); ok {
		p.Text = list
	}

	return p
}

func numericMillis(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
