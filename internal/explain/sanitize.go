package explain

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Sanitize extracts at most maxReasons reason strings from raw generator output. It
// accepts a JSON object, a fenced code block, NDJSON (the last object wins), a chat
// envelope whose message content or response field holds JSON, or prose with an
// embedded object. Every other field is ignored. maxReasons <= 0 selects
// DefaultMaxReasons.
func Sanitize(raw []byte, maxReasons int) []string {
	if maxReasons <= 0 {
		maxReasons = DefaultMaxReasons
	}
	doc, ok := decodeDocument(string(raw))
	if !ok {
		return []string{}
	}
	reasons := coerceReasons(doc["reasons"])
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}

func decodeDocument(text string) (map[string]any, bool) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return nil, false
	}

	doc, ok := lastObject(text)
	if !ok {
		doc, ok = embeddedObject(text)
	}
	if !ok {
		return nil, false
	}

	if _, has := doc["reasons"]; has {
		return doc, true
	}
	if inner, ok := envelopeText(doc); ok {
		return decodeDocument(inner)
	}
	return doc, true
}

// stripFence removes a surrounding ``` block and an optional language tag.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := strings.TrimSpace(text[:idx])
		if !strings.ContainsAny(first, "{ ") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// lastObject decodes text as a single object or as newline-delimited objects,
// returning the last object that decodes.
func lastObject(text string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err == nil && doc != nil {
		return doc, true
	}

	var last map[string]any
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var obj map[string]any
		if json.Unmarshal(line, &obj) == nil && obj != nil {
			last = obj
		}
	}
	return last, last != nil
}

func embeddedObject(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

// envelopeText returns the text payload of a chat-style envelope.
func envelopeText(doc map[string]any) (string, bool) {
	if msg, ok := doc["message"].(map[string]any); ok {
		if s, ok := msg["content"].(string); ok {
			return s, true
		}
	}
	if s, ok := doc["response"].(string); ok {
		return s, true
	}
	return "", false
}

func coerceReasons(v any) []string {
	out := []string{}
	switch r := v.(type) {
	case string:
		if s := strings.TrimSpace(r); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range r {
			if item == nil {
				continue
			}
			var s string
			switch it := item.(type) {
			case string:
				s = it
			default:
				s = fmt.Sprint(it)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
