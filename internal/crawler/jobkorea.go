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

const jobKoreaBaseURL = "https://www.jobkorea.co.kr"

// JobKorea scrapes job postings from the JobKorea search listing.
type JobKorea struct {
	client  *Client
	baseURL string
	now     func() time.Time
}

func NewJobKorea(client *Client) *JobKorea {
	return &JobKorea{client: client, baseURL: jobKoreaBaseURL, now: time.Now}
}

func (j *JobKorea) Name() string { return "jobkorea" }

func (j *JobKorea) Fetch(ctx context.Context, keyword string, limit int) ([]domain.Opportunity, error) {
	searchURL := j.baseURL + "/Search/?" + url.Values{"stext": {keyword}}.Encode()

	resp, err := j.client.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(j.baseURL)
	if err != nil {
		return nil, err
	}

	cards := doc.Find(".list-post .post")
	if cards.Length() == 0 {
		cards = doc.Find(".list-default > ul > li")
	}

	results := make([]domain.Opportunity, 0, limit)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		linkTag := card.Find("a[href]").First()
		href, ok := linkTag.Attr("href")
		if !ok {
			return true
		}

		title := strings.TrimSpace(card.Find(".post-list-info strong").First().Text())
		if title == "" {
			title = strings.TrimSpace(linkTag.Text())
		}
		if title == "" {
			return true
		}

		link := resolveLink(base, strings.TrimSpace(href))
		sourceID, ok := card.Attr("data-gno")
		if !ok || sourceID == "" {
			sourceID = extractID(href)
		}

		summary := strings.TrimSpace(card.Find(".post-list-info .desc").First().Text())
		company := strings.TrimSpace(card.Find(".post-list-corp a").First().Text())
		if company == "" {
			company = strings.TrimSpace(card.Find(".post-list-corp").First().Text())
		}
		location := strings.TrimSpace(card.Find(".option .loc").First().Text())
		deadline := ParseDeadline(strings.TrimSpace(card.Find(".option .date").First().Text()), j.now())

		results = append(results, domain.Opportunity{
			Source:   j.Name(),
			SourceID: sourceID,
			Title:    title,
			Link:     link,
			Summary:  summary,
			Category: company,
			Location: location,
			Deadline: deadline,
			Tags:     []string{keyword},
			Metadata: map[string]any{
				"keyword":      keyword,
				"company":      company,
				"raw_location": location,
			},
		})

		return len(results) < limit
	})

	j.client.logger.Debug("jobkorea listing scraped",
		zap.String("keyword", keyword),
		zap.Int("count", len(results)),
	)

	return results, nil
}
