package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/scanner"
)

const (
	defaultItemSelector    = "article, li.headline, div.news-item"
	defaultTitleSelector   = "h1, h2, h3, .title"
	defaultHeadingSelector = "p, .summary, .excerpt"
)

// HeadlineScanner crawls listing pages and extracts one RawRecord per item.
// CSS selectors come from site options so one strategy covers many portals.
type HeadlineScanner struct {
	client *http.Client
}

// NewHeadlineScanner wires an HTTP client; a nil client gets a 20s timeout default.
func NewHeadlineScanner(client *http.Client) *HeadlineScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HeadlineScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (h *HeadlineScanner) Name() string {
	return "headline"
}

// Scan walks each category URL and returns the records it lists.
func (h *HeadlineScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawRecord, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no categories provided for site %s", req.SiteName)
	}

	itemSel := option(req.Options, "itemSelector", defaultItemSelector)
	titleSel := option(req.Options, "titleSelector", defaultTitleSelector)
	headingSel := option(req.Options, "headingSelector", defaultHeadingSelector)

	var results []domain.RawRecord
	seen := map[string]struct{}{}

	for _, cat := range req.Categories {
		doc, base, err := h.fetchDocument(ctx, cat.URL)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", cat.Name, err)
		}

		doc.Find(itemSel).Each(func(i int, item *goquery.Selection) {
			record, ok := parseItem(item, base, titleSel, headingSel, req.SiteName, cat.Name)
			if !ok {
				return
			}
			key := record.URL
			if key == "" {
				key = record.Title
			}
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			results = append(results, record)
		})
	}

	return results, nil
}

func (h *HeadlineScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid listing url %s: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TrendScanner/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, base, nil
}

func parseItem(item *goquery.Selection, base *url.URL, titleSel, headingSel, siteName, category string) (domain.RawRecord, bool) {
	title := strings.TrimSpace(item.Find(titleSel).First().Text())
	if title == "" {
		return domain.RawRecord{}, false
	}

	heading := strings.TrimSpace(item.Find(headingSel).First().Text())

	href, _ := item.Find("a").First().Attr("href")
	if href == "" {
		href, _ = item.Attr("href")
	}
	link := resolveLink(base, href)

	return domain.RawRecord{
		Title:        title,
		Heading:      heading,
		SourceName:   siteName,
		URL:          link,
		CategoryHint: category,
	}, true
}

func resolveLink(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	return parsed.String()
}

func option(options map[string]string, key, fallback string) string {
	if v, ok := options[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
