// Package news scrapes the game's news page into a small feed.
package news

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/resilience"
)

// cacheTTL bounds how often the news site is hit. The feed changes a few
// times a week; five minutes is already generous.
const cacheTTL = 5 * time.Minute

// maxItems caps the feed length shown in the launcher.
const maxItems = 12

// Item is one news entry.
type Item struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
	Image   string `json:"image,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Fetcher scrapes and caches the news feed. Scraped text passes through a
// strict sanitizer: the upstream page is untrusted input.
type Fetcher struct {
	client   *resty.Client
	breaker  *resilience.Breaker
	sanitize *bluemonday.Policy
	pageURL  string
	log      *logging.Logger

	mu        sync.Mutex
	cached    []Item
	fetchedAt time.Time
	now       func() time.Time
}

// NewFetcher creates a fetcher for the given news page URL.
func NewFetcher(pageURL string, log *logging.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", "flyffu-launcherd")

	return &Fetcher{
		client:   client,
		sanitize: bluemonday.StrictPolicy(),
		breaker: resilience.New("news-feed", resilience.Options{
			Threshold: 3,
			Cooldown:  10 * time.Minute,
		}),
		pageURL: pageURL,
		log:     log,
		now:     time.Now,
	}
}

// Fetch returns the current feed, serving from cache when fresh. A fetch
// failure with a warm cache degrades to the stale copy.
func (f *Fetcher) Fetch(ctx context.Context) ([]Item, error) {
	f.mu.Lock()
	if f.cached != nil && f.now().Sub(f.fetchedAt) < cacheTTL {
		items := f.cached
		f.mu.Unlock()
		return items, nil
	}
	f.mu.Unlock()

	var items []Item
	err := f.breaker.Do(func() error {
		var ferr error
		items, ferr = f.scrape(ctx)
		return ferr
	})
	if err != nil {
		f.mu.Lock()
		stale := f.cached
		f.mu.Unlock()
		if stale != nil {
			f.log.Warn("News fetch failed, serving stale cache", zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("news fetch failed: %w", err)
	}

	f.mu.Lock()
	f.cached = items
	f.fetchedAt = f.now()
	f.mu.Unlock()
	return items, nil
}

func (f *Fetcher) scrape(ctx context.Context) ([]Item, error) {
	resp, err := f.client.R().SetContext(ctx).Get(f.pageURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news page returned %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse news page: %w", err)
	}

	base, err := url.Parse(f.pageURL)
	if err != nil {
		return nil, err
	}

	var items []Item
	doc.Find("article, .news-item, .news_list li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		item := f.extract(base, s)
		if item.Title != "" && item.URL != "" {
			items = append(items, item)
		}
		return len(items) < maxItems
	})
	if len(items) == 0 {
		return nil, fmt.Errorf("no news items found, page layout may have changed")
	}
	return items, nil
}

func (f *Fetcher) extract(base *url.URL, s *goquery.Selection) Item {
	var item Item

	link := s.Find("a").First()
	if href, ok := link.Attr("href"); ok {
		item.URL = f.absolute(base, href)
	}

	item.Title = f.textOf(s.Find("h1, h2, h3, .title").First())
	if item.Title == "" {
		item.Title = f.textOf(link)
	}

	item.Summary = f.textOf(s.Find("p, .summary, .desc").First())
	item.Date = f.textOf(s.Find("time, .date").First())

	if src, ok := s.Find("img").First().Attr("src"); ok {
		item.Image = f.absolute(base, src)
	}
	return item
}

// textOf reduces a scraped fragment to plain trimmed text. Sanitizing the
// inner HTML (rather than calling Text) drops script and style content
// instead of leaking it into the feed.
func (f *Fetcher) textOf(s *goquery.Selection) string {
	inner, err := s.Html()
	if err != nil {
		inner = s.Text()
	}
	return strings.TrimSpace(html.UnescapeString(f.sanitize.Sanitize(inner)))
}

func (f *Fetcher) absolute(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
