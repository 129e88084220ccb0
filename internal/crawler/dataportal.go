package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

const dataPortalContestURL = "https://www.data.go.kr/tcs/dss/selectContestList.do"

// DataPortal scrapes contest announcements from the public data portal.
type DataPortal struct {
	client  *Client
	baseURL string
	now     func() time.Time
}

func NewDataPortal(client *Client) *DataPortal {
	return &DataPortal{client: client, baseURL: dataPortalContestURL, now: time.Now}
}

func (d *DataPortal) Name() string { return "data_portal" }

func (d *DataPortal) Fetch(ctx context.Context, keyword string, limit int) ([]domain.Opportunity, error) {
	listURL := d.baseURL + "?" + url.Values{"keyword": {keyword}, "page": {"1"}}.Encode()

	resp, err := d.client.get(ctx, listURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Opportunity, 0, limit)
	doc.Find("table tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cols := row.Find("td")
		if cols.Length() < 4 {
			return true
		}

		titleTag := cols.Eq(1).Find("a[href]").First()
		href, ok := titleTag.Attr("href")
		if !ok {
			return true
		}
		title := strings.TrimSpace(titleTag.Text())
		if title == "" {
			return true
		}

		link := resolveLink(base, strings.TrimSpace(href))
		sourceID, ok := row.Attr("data-uid")
		if !ok || sourceID == "" {
			sourceID = extractID(link)
		}

		host := strings.TrimSpace(cols.Eq(2).Text())
		period := strings.TrimSpace(cols.Eq(3).Text())
		deadline := ParseDeadline(extractDeadlineFromPeriod(period), d.now())

		tags := []string{}
		if keyword != "" {
			tags = append(tags, keyword)
		}

		results = append(results, domain.Opportunity{
			Source:   d.Name(),
			SourceID: sourceID,
			Title:    title,
			Link:     link,
			Summary:  strings.TrimSpace(cols.Eq(1).Text()),
			Category: host,
			Location: "online",
			Deadline: deadline,
			Tags:     tags,
			Metadata: map[string]any{
				"keyword": keyword,
				"host":    host,
				"period":  period,
			},
		})

		return len(results) < limit
	})

	d.client.logger.Debug("data portal listing scraped",
		zap.String("keyword", keyword),
		zap.Int("count", len(results)),
	)

	return results, nil
}
