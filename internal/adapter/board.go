package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/model"
)

var _ model.Source = (*Board)(nil)

// postedDaysRegex matches relative ages like "Posted 3 days ago".
var postedDaysRegex = regexp.MustCompile(`(\d+)\s+day`)

// Board scrapes an HTML listing page using the CSS selectors configured
// for the source. Container, title and link selectors are mandatory; the
// rest are optional and simply omitted from the record when absent.
type Board struct {
	name    string
	url     string
	sel     config.SelectorConfig
	maxJobs int
	client  *Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewBoard creates a scraper for one configured board source.
func NewBoard(src config.SourceConfig, maxJobs int, client *Client, logger *slog.Logger) *Board {
	return &Board{
		name:    src.Name,
		url:     src.URL,
		sel:     src.Selectors,
		maxJobs: maxJobs,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// Name returns the configured source name.
func (b *Board) Name() string {
	return b.name
}

// Fetch downloads the listing page and extracts up to maxJobs raw records.
// Cards without a title or link element are skipped; all other fields are
// best-effort.
func (b *Board) Fetch(ctx context.Context) ([]model.RawJob, error) {
	body, err := b.client.Get(ctx, b.url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", b.url, err)
	}

	base, err := url.Parse(b.url)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", b.url, err)
	}

	var jobs []model.RawJob
	doc.Find(b.sel.Container).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= b.maxJobs {
			return false
		}

		title := elementText(card, b.sel.Title)
		link := card.Find(b.sel.Link).First()
		if title == "" || link.Length() == 0 {
			return true
		}

		raw := model.RawJob{
			model.FieldTitle: title,
			model.FieldURL:   resolveHref(base, link.AttrOr("href", "")),
		}

		if company := elementText(card, b.sel.Company); company != "" {
			raw[model.FieldCompany] = company
		}
		if location := elementText(card, b.sel.Location); location != "" {
			raw[model.FieldLocation] = location
			if strings.Contains(strings.ToLower(location), "remote") {
				raw[model.FieldJobType] = "Remote"
			}
		}
		if desc := elementText(card, b.sel.Description); desc != "" {
			raw[model.FieldDescription] = desc
		}
		if salary := elementText(card, b.sel.Salary); salary != "" {
			raw[model.FieldSalary] = salary
		}
		if posted := elementText(card, b.sel.Posted); posted != "" {
			raw[model.FieldPostedDate] = b.postedDate(posted)
		}

		jobs = append(jobs, raw)
		return true
	})

	if b.sel.Detail != "" {
		b.fillDetails(ctx, jobs)
	}

	return jobs, nil
}

// fillDetails visits each posting's own page and replaces the description
// with the full text behind the detail selector. Failures leave the record
// as scraped from the listing.
func (b *Board) fillDetails(ctx context.Context, jobs []model.RawJob) {
	for _, raw := range jobs {
		link := raw[model.FieldURL]
		if link == "" {
			continue
		}
		body, err := b.client.Get(ctx, link)
		if err != nil {
			b.logger.Debug("detail page fetch failed", "source", b.name, "url", link, "error", err)
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			b.logger.Debug("detail page parse failed", "source", b.name, "url", link, "error", err)
			continue
		}
		if desc := elementText(doc.Selection, b.sel.Detail); desc != "" {
			raw[model.FieldDescription] = desc
		}
	}
}

// postedDate converts a relative age like "3 days ago" into an ISO date.
// Text without a day count counts as posted today.
func (b *Board) postedDate(raw string) string {
	today := b.now()
	if m := postedDaysRegex.FindStringSubmatch(raw); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			return today.AddDate(0, 0, -days).Format("2006-01-02")
		}
	}
	return today.Format("2006-01-02")
}

// elementText returns the trimmed, whitespace-collapsed text of the first
// element matching selector, or "" when the selector is empty or matches
// nothing.
func elementText(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}

// resolveHref makes href absolute against the listing page URL.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
