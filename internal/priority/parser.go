// Package priority extracts structured priority suggestions from free-form
// model output. Parse failure is a normal outcome here, never an error.
package priority

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?is)```json(.*?)```")

// ExtractBlock pulls the JSON payload out of a model response: a fenced
// ```json block wins, otherwise the whole trimmed text is accepted only when
// it already looks like a JSON array or object.
func ExtractBlock(raw string) (string, bool) {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}
	return "", false
}

// Parse returns the priority score per match id found in the response.
// Entries failing the shape check (non-integer match_id, non-numeric
// priority) are skipped individually; unparseable input yields an empty map.
func Parse(raw string) map[int64]float64 {
	scores := make(map[int64]float64)
	if raw == "" {
		return scores
	}

	text, ok := ExtractBlock(raw)
	if !ok {
		return scores
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return scores
	}

	entries, ok := data.([]any)
	if !ok {
		// A single object counts as a one-entry batch.
		entries = []any{data}
	}

	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		matchID, ok := asInt(fields["match_id"])
		if !ok {
			continue
		}
		priorityValue, ok := asFloat(fields["priority"])
		if !ok {
			continue
		}
		confidence := 0.0
		if c, ok := asFloat(fields["confidence"]); ok {
			confidence = c
		}
		scores[matchID] = ScoreFor(priorityValue, confidence)
	}

	return scores
}

// ScoreFor converts a stated priority (1 = most urgent) and a confidence in
// [0,1] into the derived ranking number. Lower priority numbers and higher
// confidence both raise the score.
func ScoreFor(priority, confidence float64) float64 {
	priority = math.Max(1, priority)
	confidence = math.Max(0, math.Min(1, confidence))
	base := 200 - (priority-1)*20
	return math.Round((base+confidence*10)*100) / 100
}

func asInt(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
