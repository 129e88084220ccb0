package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const jobKoreaFixture = `<html><body>
<div class="list-post">
  <div class="post" data-gno="50123">
    <div class="post-list-corp"><a>네이버클라우드</a></div>
    <div class="post-list-info">
      <a href="/Recruit/GI_Read/50123?Oem_Code=C1"><strong>백엔드 개발자 채용</strong></a>
      <p class="desc">Go 기반 플랫폼 개발</p>
    </div>
    <div class="option"><span class="loc">서울</span><span class="date">2026.04.01</span></div>
  </div>
  <div class="post">
    <div class="post-list-info">
      <a href="/Recruit/GI_Read?no=50124"><strong>데이터 엔지니어</strong></a>
    </div>
    <div class="option"><span class="date">수시채용</span></div>
  </div>
  <div class="post">
    <div class="post-list-info"><strong></strong></div>
  </div>
</div>
</body></html>`

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func TestJobKoreaFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("stext"); got != "백엔드" {
			t.Errorf("expected keyword query, got %q", got)
		}
		w.Write([]byte(jobKoreaFixture))
	}))
	defer server.Close()

	source := &JobKorea{client: NewClient(zap.NewNop()), baseURL: server.URL, now: fixedNow}

	results, err := source.Fetch(context.Background(), "백엔드", 10)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 opportunities, got %d", len(results))
	}

	first := results[0]
	if first.Source != "jobkorea" || first.SourceID != "50123" {
		t.Fatalf("unexpected identity: %s/%s", first.Source, first.SourceID)
	}
	if first.Title != "백엔드 개발자 채용" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Link != server.URL+"/Recruit/GI_Read/50123?Oem_Code=C1" {
		t.Fatalf("unexpected link: %q", first.Link)
	}
	if first.Summary != "Go 기반 플랫폼 개발" {
		t.Fatalf("unexpected summary: %q", first.Summary)
	}
	if first.Category != "네이버클라우드" {
		t.Fatalf("unexpected company: %q", first.Category)
	}
	if first.Location != "서울" {
		t.Fatalf("unexpected location: %q", first.Location)
	}
	if first.Deadline == nil || first.Deadline.Format("2006-01-02") != "2026-04-01" {
		t.Fatalf("unexpected deadline: %v", first.Deadline)
	}
	if len(first.Tags) != 1 || first.Tags[0] != "백엔드" {
		t.Fatalf("unexpected tags: %v", first.Tags)
	}

	second := results[1]
	if second.SourceID != "50124" {
		t.Fatalf("expected id from href fallback, got %q", second.SourceID)
	}
	if second.Deadline != nil {
		t.Fatalf("expected nil deadline for rolling recruitment, got %v", second.Deadline)
	}
}

func TestJobKoreaFetchHonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(jobKoreaFixture))
	}))
	defer server.Close()

	source := &JobKorea{client: NewClient(zap.NewNop()), baseURL: server.URL, now: fixedNow}

	results, err := source.Fetch(context.Background(), "백엔드", 1)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the limit to cap results at 1, got %d", len(results))
	}
}

func TestJobKoreaFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := &JobKorea{client: NewClient(zap.NewNop()), baseURL: server.URL, now: fixedNow}

	if _, err := source.Fetch(context.Background(), "백엔드", 10); err == nil {
		t.Fatalf("expected an error for non-200 response")
	}
}
