package roadmap

import "testing"

const sampleNarrative = `앞으로 6개월 동안의 로드맵입니다.

<1.Go 백엔드 기초 다지기-4-9>
먼저 Go 언어와 표준 라이브러리에 익숙해집니다.

<2.포트폴리오 API 서버 구축-6-8.5>
실제 배포 가능한 API 서버를 만듭니다.

<3.코딩 테스트 대비-2-7>

<final.백엔드 취업 로드맵-6>
`

func TestParseItems(t *testing.T) {
	meta, items := Parse(sampleNarrative)

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.Priority != 1 {
		t.Fatalf("expected priority 1, got %d", first.Priority)
	}
	if first.Title != "Go 백엔드 기초 다지기" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.DurationWeeks == nil || *first.DurationWeeks != 4 {
		t.Fatalf("expected 4 weeks, got %v", first.DurationWeeks)
	}
	if first.Importance == nil || *first.Importance != 9 {
		t.Fatalf("expected importance 9, got %v", first.Importance)
	}

	if items[1].DurationWeeks == nil || *items[1].DurationWeeks != 6 {
		t.Fatalf("expected 6 weeks for second item, got %v", items[1].DurationWeeks)
	}
	if items[1].Importance == nil || *items[1].Importance != 8.5 {
		t.Fatalf("expected importance 8.5, got %v", items[1].Importance)
	}

	if meta.Title != "백엔드 취업 로드맵" {
		t.Fatalf("unexpected plan title: %q", meta.Title)
	}
	if meta.TotalMonths == nil || *meta.TotalMonths != 6 {
		t.Fatalf("expected 6 total months, got %v", meta.TotalMonths)
	}
}

func TestParseTitleFallback(t *testing.T) {
	meta, items := Parse("<TITLE-커리어 로드맵-v1>\n<1.기초 학습-2-5>")

	if meta.Title != "커리어 로드맵" {
		t.Fatalf("unexpected title: %q", meta.Title)
	}
	if meta.TotalMonths != nil {
		t.Fatalf("expected no total months, got %v", meta.TotalMonths)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestParseEmptyAndUnmarked(t *testing.T) {
	for _, raw := range []string{"", "로드맵 마커가 없는 자유 서술"} {
		meta, items := Parse(raw)
		if len(items) != 0 || meta.Title != "" {
			t.Fatalf("expected empty result for %q", raw)
		}
	}
}
