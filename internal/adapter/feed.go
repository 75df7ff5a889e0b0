package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/model"
)

var _ model.Source = (*Feed)(nil)

// rssFeed is the subset of RSS 2.0 the job feeds actually use.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Author      string `xml:"author"`  // job feeds put the company here
	Creator     string `xml:"creator"` // dc:creator fallback
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// pubDateLayouts covers the date formats seen in the wild, most common first.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// Feed reads job postings from an RSS feed.
type Feed struct {
	name    string
	url     string
	maxJobs int
	client  *Client
}

// NewFeed creates a reader for one configured feed source.
func NewFeed(src config.SourceConfig, maxJobs int, client *Client) *Feed {
	return &Feed{
		name:    src.Name,
		url:     src.URL,
		maxJobs: maxJobs,
		client:  client,
	}
}

// Name returns the configured source name.
func (f *Feed) Name() string {
	return f.name
}

// Fetch downloads the feed and converts up to maxJobs items into raw
// records. Items without a title or link are skipped.
func (f *Feed) Fetch(ctx context.Context) ([]model.RawJob, error) {
	body, err := f.client.Get(ctx, f.url)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	items := feed.Channel.Items
	if len(items) > f.maxJobs {
		items = items[:f.maxJobs]
	}

	jobs := make([]model.RawJob, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		raw := model.RawJob{
			model.FieldTitle: title,
			model.FieldURL:   link,
		}

		company := strings.TrimSpace(item.Author)
		if company == "" {
			company = strings.TrimSpace(item.Creator)
		}
		if company != "" {
			raw[model.FieldCompany] = company
		}

		if date := parsePubDate(item.PubDate); date != "" {
			raw[model.FieldPostedDate] = date
		}
		if desc := extractText(item.Description); desc != "" {
			raw[model.FieldDescription] = desc
		}

		jobs = append(jobs, raw)
	}

	return jobs, nil
}

// parsePubDate converts an RSS pubDate into an ISO date, or "" when the
// value matches none of the known layouts.
func parsePubDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
