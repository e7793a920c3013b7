package translate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Models wrap JSON in markdown fences or string-encode the items array
// often enough that a strict decoder loses real translations. Decoding
// here is deliberately lenient: anything that can be coaxed into indexed
// bullet sets is accepted.

type envelopeItem struct {
	Index         *int            `json:"index"`
	KoreanSummary json.RawMessage `json:"koreanSummary"`
	Bullets       json.RawMessage `json:"bullets"`
}

func decodeEnvelope(content string) (map[int][]string, error) {
	clean := stripFences(content)

	var env struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(clean), &env); err != nil {
		return nil, fmt.Errorf("unparseable enrichment response: %w", err)
	}
	if len(env.Items) == 0 {
		return nil, errors.New("missing items array in enrichment response")
	}

	itemsRaw := env.Items
	var encoded string
	if json.Unmarshal(itemsRaw, &encoded) == nil {
		itemsRaw = json.RawMessage(encoded)
	}

	var items []envelopeItem
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return nil, errors.New("items is not an array in enrichment response")
	}

	out := make(map[int][]string)
	for _, it := range items {
		if it.Index == nil {
			continue
		}
		set := decodeStringSet(it.KoreanSummary)
		if len(set) == 0 {
			set = decodeStringSet(it.Bullets)
		}
		if len(set) == 0 {
			continue
		}
		out[*it.Index] = set
	}
	return out, nil
}

// decodeStringSet accepts a JSON string array, a string-encoded array, or
// a single bare string.
func decodeStringSet(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var arr []string
	if json.Unmarshal(raw, &arr) == nil {
		return compactStrings(arr)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if json.Unmarshal([]byte(s), &arr) == nil {
			return compactStrings(arr)
		}
		if t := strings.TrimSpace(s); t != "" {
			return []string{t}
		}
	}
	return nil
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
