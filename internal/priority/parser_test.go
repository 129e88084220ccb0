package priority

import "testing"

func TestParseFencedBlock(t *testing.T) {
	raw := "Here is the ranking:\n```json\n[{\"match_id\": 7, \"priority\": 1, \"confidence\": 1.0}]\n```\nDone."

	scores := Parse(raw)

	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	if scores[7] != 210.0 {
		t.Fatalf("expected score 210.0 for match 7, got %v", scores[7])
	}
}

func TestParseBareArray(t *testing.T) {
	raw := `[{"match_id": 3, "priority": 2}, {"match_id": 4, "priority": 5, "confidence": 0.5}]`

	scores := Parse(raw)

	if scores[3] != 180.0 {
		t.Fatalf("expected 180.0 for match 3, got %v", scores[3])
	}
	if scores[4] != 125.0 {
		t.Fatalf("expected 125.0 for match 4, got %v", scores[4])
	}
}

func TestParseSingleObject(t *testing.T) {
	scores := Parse(`{"match_id": 1, "priority": 1}`)

	if len(scores) != 1 || scores[1] != 200.0 {
		t.Fatalf("expected single score 200.0, got %v", scores)
	}
}

func TestParseSkipsMalformedEntries(t *testing.T) {
	raw := `[
		{"match_id": "12", "priority": 1},
		{"match_id": 2.5, "priority": 1},
		{"match_id": 3, "priority": "high"},
		{"match_id": 4, "priority": 3},
		"not an object"
	]`

	scores := Parse(raw)

	if len(scores) != 1 {
		t.Fatalf("expected only the valid entry, got %v", scores)
	}
	if scores[4] != 160.0 {
		t.Fatalf("expected 160.0 for match 4, got %v", scores[4])
	}
}

func TestParseGarbage(t *testing.T) {
	for _, raw := range []string{"", "no json here", "```json\nnot valid\n```", "[1, 2, 3"} {
		if scores := Parse(raw); len(scores) != 0 {
			t.Fatalf("expected empty map for %q, got %v", raw, scores)
		}
	}
}

func TestScoreForClamps(t *testing.T) {
	// priority floors at 1, confidence clamps to [0,1]
	if got := ScoreFor(0, 2); got != 210.0 {
		t.Fatalf("expected 210.0, got %v", got)
	}
	if got := ScoreFor(5, -1); got != 120.0 {
		t.Fatalf("expected 120.0, got %v", got)
	}
	if got := ScoreFor(2, 0.25); got != 182.5 {
		t.Fatalf("expected 182.5, got %v", got)
	}
}

func TestExtractBlockPrefersFence(t *testing.T) {
	raw := "{\"a\": 1}\n```json\n[1]\n```"

	block, ok := ExtractBlock(raw)
	if !ok || block != "[1]" {
		t.Fatalf("expected fenced block to win, got %q ok=%v", block, ok)
	}
}
