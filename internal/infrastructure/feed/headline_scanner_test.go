package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TrendScanner/internal/scanner"
)

const listingHTML = `
<html><body>
  <article>
    <h2>World cup squad announced</h2>
    <p>Selectors finalize the fifteen for the tournament.</p>
    <a href="/sports/squad-announced">read</a>
  </article>
  <article>
    <h2>World cup squad announced</h2>
    <p>Duplicate listing of the same story.</p>
    <a href="/sports/squad-announced">read</a>
  </article>
  <article>
    <h2>Fuel price hike protests</h2>
    <p>Transport workers announce strike.</p>
    <a href="https://news.example.org/economy/fuel-protests">read</a>
  </article>
  <article>
    <p>No title on this one, must be skipped.</p>
  </article>
</body></html>`

func TestHeadlineScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	sc := NewHeadlineScanner(server.Client())
	req := scanner.Request{
		Day:      time.Now(),
		SiteName: "newsfeed",
		Categories: []scanner.Category{
			{Name: "sports", URL: server.URL + "/latest"},
		},
	}

	records, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records after dedup and skip, got %d", len(records))
	}

	first := records[0]
	if first.Title != "World cup squad announced" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Heading != "Selectors finalize the fifteen for the tournament." {
		t.Fatalf("unexpected heading: %q", first.Heading)
	}
	if first.SourceName != "newsfeed" {
		t.Fatalf("unexpected source: %q", first.SourceName)
	}
	if first.CategoryHint != "sports" {
		t.Fatalf("unexpected hint: %q", first.CategoryHint)
	}
	if first.URL != server.URL+"/sports/squad-announced" {
		t.Fatalf("relative link not resolved: %q", first.URL)
	}

	if records[1].URL != "https://news.example.org/economy/fuel-protests" {
		t.Fatalf("absolute link mangled: %q", records[1].URL)
	}
}

func TestHeadlineScannerCustomSelectors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<div class="news-card">
		  <span class="headline-text">Metro rail opening delayed</span>
		  <span class="sub">Inauguration pushed to next month.</span>
		  <a href="/metro">read</a>
		</div>`))
	}))
	defer server.Close()

	sc := NewHeadlineScanner(server.Client())
	req := scanner.Request{
		SiteName: "newsfeed",
		Categories: []scanner.Category{
			{Name: "national", URL: server.URL},
		},
		Options: map[string]string{
			"itemSelector":    "div.news-card",
			"titleSelector":   ".headline-text",
			"headingSelector": ".sub",
		},
	}

	records, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Title != "Metro rail opening delayed" {
		t.Fatalf("unexpected title: %q", records[0].Title)
	}
	if records[0].Heading != "Inauguration pushed to next month." {
		t.Fatalf("unexpected heading: %q", records[0].Heading)
	}
}

func TestHeadlineScannerNoCategories(t *testing.T) {
	t.Parallel()

	sc := NewHeadlineScanner(nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{SiteName: "newsfeed"}); err == nil {
		t.Fatal("expected error for missing categories")
	}
}
