package llm

import (
	"encoding/json"
	"strings"
)

var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// cleanResponse strips code fences and any prose before the first JSON
// object or array. Text with no JSON opener becomes an empty object.
func cleanResponse(raw string) string {
	cleaned := strings.TrimSpace(fenceReplacer.Replace(raw))
	if cleaned == "" {
		return "{}"
	}

	start := strings.IndexAny(cleaned, "{[")
	if start == -1 {
		return "{}"
	}
	return cleaned[start:]
}

// RecoverJSON turns possibly malformed backend text into a JSON document.
// A truncated top-level array is salvaged up to its last complete object.
// The second return is false when nothing could be recovered.
func RecoverJSON(raw string) (json.RawMessage, bool) {
	cleaned := cleanResponse(raw)
	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), true
	}

	if strings.HasPrefix(cleaned, "[") && !strings.HasSuffix(cleaned, "]") {
		lastClose := strings.LastIndex(cleaned, "}")
		if lastClose > 0 {
			salvaged := cleaned[:lastClose+1] + "]"
			if json.Valid([]byte(salvaged)) {
				return json.RawMessage(salvaged), true
			}
		}
	}

	return nil, false
}

// Recover is RecoverJSON decoded into generic values. It returns nil when
// nothing could be recovered.
func Recover(raw string) any {
	doc, ok := RecoverJSON(raw)
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil
	}
	return v
}

// recoverArray finds the list a stage should consume: a bare array, the
// value under one of keys, or else the first array-valued property.
func recoverArray(doc json.RawMessage, keys ...string) ([]json.RawMessage, bool) {
	var list []json.RawMessage
	if isJSONArray(doc) {
		if err := json.Unmarshal(doc, &list); err == nil {
			return list, true
		}
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return nil, false
	}
	for _, key := range keys {
		if v, ok := obj[key]; ok && isJSONArray(v) {
			if err := json.Unmarshal(v, &list); err == nil {
				return list, true
			}
		}
	}

	// Property order matters for "first", so walk the object tokens.
	return firstArrayProperty(doc)
}

func firstArrayProperty(doc json.RawMessage) ([]json.RawMessage, bool) {
	dec := json.NewDecoder(strings.NewReader(string(doc)))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, false
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		if !isJSONArray(value) {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(value, &list); err == nil {
			return list, true
		}
	}
	return nil, false
}

func isJSONArray(v json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(v)), "[")
}
