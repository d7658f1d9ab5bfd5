// Package update checks the release feed for a newer launcher version.
package update

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/resilience"
)

// Status is the outcome of one update check.
type Status struct {
	Current   string `json:"current"`
	Latest    string `json:"latest"`
	Available bool   `json:"available"`
	URL       string `json:"url,omitempty"`
}

// release is the subset of the GitHub release payload we read.
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Draft   bool   `json:"draft"`
	Pre     bool   `json:"prerelease"`
}

// Checker polls the release feed. Network flakiness is absorbed twice:
// retryablehttp retries individual requests, the breaker stops checks
// entirely while the feed is down.
type Checker struct {
	client  *retryablehttp.Client
	breaker *resilience.Breaker
	url     string
	current string
	log     *logging.Logger
}

// NewChecker creates a checker for the given feed URL and running version.
func NewChecker(url, current string, log *logging.Logger) *Checker {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 15 * time.Second
	client.Logger = nil

	return &Checker{
		client: client,
		breaker: resilience.New("update-feed", resilience.Options{
			Threshold: 3,
			Cooldown:  10 * time.Minute,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("Update feed breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
		url:     url,
		current: current,
		log:     log,
	}
}

// Check fetches the latest release and compares it to the running version.
func (c *Checker) Check(ctx context.Context) (Status, error) {
	status := Status{Current: c.current}

	err := c.breaker.Do(func() error {
		rel, err := c.fetchLatest(ctx)
		if err != nil {
			return err
		}
		status.Latest = strings.TrimPrefix(rel.TagName, "v")
		status.URL = rel.HTMLURL
		status.Available = CompareVersions(status.Latest, c.current) > 0
		return nil
	})
	if err != nil {
		return Status{}, fmt.Errorf("update check failed: %w", err)
	}
	return status, nil
}

func (c *Checker) fetchLatest(ctx context.Context) (release, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", c.url, nil)
	if err != nil {
		return release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return release{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return release{}, fmt.Errorf("release feed returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return release{}, err
	}
	var rel release
	if err := sonic.Unmarshal(body, &rel); err != nil {
		return release{}, fmt.Errorf("failed to parse release feed: %w", err)
	}
	if rel.TagName == "" {
		return release{}, fmt.Errorf("release feed has no tag name")
	}
	return rel, nil
}

// CompareVersions compares two dotted version strings numerically,
// ignoring a leading "v" and any pre-release suffix after "-". Returns
// -1, 0, or 1. Unparseable segments compare as zero.
func CompareVersions(a, b string) int {
	pa := splitVersion(a)
	pb := splitVersion(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var na, nb int
		if i < len(pa) {
			na = pa[i]
		}
		if i < len(pb) {
			nb = pb[i]
		}
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func splitVersion(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}
