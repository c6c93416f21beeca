package experiment

import (
	"encoding/json"
	"strings"
)

// NoTaskSentinel is returned when no extraction strategy finds task text.
const NoTaskSentinel = "No task provided"

// Strategy pulls task text out of one known example shape.
type Strategy func(raw any) (string, bool)

// DefaultStrategies is the extraction order: chat-style messages first, then
// direct fields, then a bare string example.
var DefaultStrategies = []Strategy{
	FromMessages,
	FromField("task"),
	FromField("question"),
	FromField("input"),
	FromString,
}

// ExtractTask recovers the task text from an example's inputs.
func ExtractTask(raw any) string {
	return ExtractWith(raw, DefaultStrategies)
}

// ExtractWith tries each strategy in order and normalizes the first hit.
func ExtractWith(raw any, strategies []Strategy) string {
	for _, s := range strategies {
		text, ok := s(raw)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		if out := normalize(text); out != "" {
			return out
		}
	}
	return NoTaskSentinel
}

// FromMessages reads {"messages": [...]} where the first message may be
// nested in extra lists and may keep its text under kwargs.content.
func FromMessages(raw any) (string, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := m["messages"]
	if !ok {
		return "", false
	}

	for {
		list, ok := msg.([]any)
		if !ok || len(list) == 0 {
			break
		}
		msg = list[0]
	}

	obj, ok := msg.(map[string]any)
	if !ok {
		return "", false
	}
	if kwargs, ok := obj["kwargs"].(map[string]any); ok {
		if s, ok := kwargs["content"].(string); ok && s != "" {
			return s, true
		}
	}
	s, ok := obj["content"].(string)
	return s, ok
}

// FromField reads a top-level string field.
func FromField(name string) Strategy {
	return func(raw any) (string, bool) {
		m, ok := raw.(map[string]any)
		if !ok {
			return "", false
		}
		s, ok := m[name].(string)
		return s, ok
	}
}

// FromString accepts an example that is itself the task text.
func FromString(raw any) (string, bool) {
	s, ok := raw.(string)
	return s, ok
}

// normalize unwraps a JSON object carrying the task, or the text after a
// "Topic:" marker.
func normalize(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var data map[string]any
		if err := json.Unmarshal([]byte(trimmed), &data); err == nil {
			for _, key := range []string{"task", "content"} {
				if s, ok := data[key].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
			return text
		}
	}

	if _, after, ok := strings.Cut(text, "Topic:"); ok {
		topic, _, _ := strings.Cut(after, "Topic:")
		return strings.TrimSpace(topic)
	}

	return text
}
