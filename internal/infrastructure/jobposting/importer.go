package jobposting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidURL = errors.New("invalid job posting url")
	ErrNoContent  = errors.New("no job posting content found")
)

// minUsefulDescription is the length below which a static fetch is treated
// as a JS-rendered shell and retried headless.
const minUsefulDescription = 200

type Posting struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type Importer interface {
	Import(ctx context.Context, rawURL string) (Posting, error)
}

type Extractor struct {
	headless bool
	timeout  time.Duration
	logger   *logrus.Logger

	// allowPrivate lifts the public-address restriction; tests only.
	allowPrivate bool
}

func NewExtractor(headless bool, logger *logrus.Logger) *Extractor {
	return &Extractor{headless: headless, timeout: 20 * time.Second, logger: logger}
}

func (x *Extractor) Import(ctx context.Context, rawURL string) (Posting, error) {
	parsed, err := validateURL(rawURL)
	if err != nil {
		return Posting{}, err
	}
	if err := x.checkHost(ctx, parsed.Hostname()); err != nil {
		return Posting{}, err
	}
	u := parsed.String()

	p, err := x.fetchStatic(ctx, u)
	if errors.Is(err, ErrBlockedHost) {
		return Posting{}, err
	}
	if err == nil && (len(p.Description) >= minUsefulDescription || !x.headless) {
		return p, nil
	}
	if !x.headless {
		return Posting{}, err
	}

	if x.logger != nil {
		x.logger.Printf("[JobPosting] static fetch insufficient, trying headless url=%s err=%v", u, err)
	}
	hp, herr := x.fetchHeadless(ctx, u)
	if herr != nil {
		if err == nil {
			return p, nil
		}
		return Posting{}, herr
	}
	return hp, nil
}

func (x *Extractor) fetchStatic(ctx context.Context, pageURL string) (Posting, error) {
	if ctx.Err() != nil {
		return Posting{}, ctx.Err()
	}

	c := colly.NewCollector()
	c.SetRequestTimeout(x.timeout)
	if !x.allowPrivate {
		c.WithTransport(guardedTransport(x.timeout))
	}

	var out Posting
	var parseErr, reqErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; MockraftBot/1.0)")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	c.OnResponse(func(r *colly.Response) {
		out, parseErr = ParseHTML(bytes.NewReader(r.Body), pageURL)
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return Posting{}, fmt.Errorf("fetch job page: %w", err)
	}
	c.Wait()

	if reqErr != nil {
		return Posting{}, fmt.Errorf("fetch job page: %w", reqErr)
	}
	if parseErr != nil {
		return Posting{}, parseErr
	}
	return out, nil
}

func (x *Extractor) fetchHeadless(ctx context.Context, pageURL string) (Posting, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, x.timeout+5*time.Second)
	defer reqCancel()

	var html, location string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return Posting{}, fmt.Errorf("headless fetch: %w", err)
	}

	// the browser follows redirects on its own
	final, err := url.Parse(location)
	if err != nil || final.Hostname() == "" {
		return Posting{}, fmt.Errorf("headless fetch: unexpected location %q", location)
	}
	if err := x.checkHost(ctx, final.Hostname()); err != nil {
		return Posting{}, err
	}
	return ParseHTML(strings.NewReader(html), pageURL)
}

func validateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

func (x *Extractor) checkHost(ctx context.Context, host string) error {
	if x.allowPrivate {
		return nil
	}
	return checkHost(ctx, host)
}

var _ Importer = (*Extractor)(nil)
