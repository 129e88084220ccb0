package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const dataPortalFixture = `<html><body>
<table><tbody>
  <tr data-uid="C2026-17">
    <td>1</td>
    <td><a href="/tcs/cst/selectContestDetail.do?seq=17">공공데이터 활용 공모전</a></td>
    <td>행정안전부</td>
    <td>2026.01.01 ~ 2026.03.20</td>
  </tr>
  <tr>
    <td>2</td>
    <td>링크 없는 행</td>
    <td>기관</td>
    <td>상시</td>
  </tr>
</tbody></table>
</body></html>`

func TestDataPortalFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("keyword"); got != "공모전" {
			t.Errorf("expected keyword query, got %q", got)
		}
		w.Write([]byte(dataPortalFixture))
	}))
	defer server.Close()

	source := &DataPortal{client: NewClient(zap.NewNop()), baseURL: server.URL, now: fixedNow}

	results, err := source.Fetch(context.Background(), "공모전", 10)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(results))
	}

	contest := results[0]
	if contest.Source != "data_portal" || contest.SourceID != "C2026-17" {
		t.Fatalf("unexpected identity: %s/%s", contest.Source, contest.SourceID)
	}
	if contest.Title != "공공데이터 활용 공모전" {
		t.Fatalf("unexpected title: %q", contest.Title)
	}
	if contest.Category != "행정안전부" {
		t.Fatalf("unexpected host: %q", contest.Category)
	}
	if contest.Location != "online" {
		t.Fatalf("unexpected location: %q", contest.Location)
	}
	if contest.Deadline == nil || contest.Deadline.Format("2006-01-02") != "2026-03-20" {
		t.Fatalf("expected the period's closing date, got %v", contest.Deadline)
	}
}
