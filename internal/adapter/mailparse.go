package adapter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JoseAndresM/LKND/internal/model"
)

// maxMessageBytes caps how much of a single message gets decoded. Alert
// mail is far smaller; anything beyond this is not an alert.
const maxMessageBytes = 8 << 20

var (
	jobViewRegex     = regexp.MustCompile(`/jobs/view/(\d+)`)
	alertSalaryRegex = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*(?:year|yr|hour|hr)`)
)

// messageBody returns the decoded HTML and plain-text parts of a raw
// RFC822 message. Multipart bodies are walked recursively; when several
// parts share a type the longest one wins.
func messageBody(raw []byte) (htmlPart, plain string, err error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", "", fmt.Errorf("parse message: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(msg.Body, maxMessageBytes))
	if err != nil {
		return "", "", fmt.Errorf("read message body: %w", err)
	}
	plain, htmlPart = textParts(msg.Header, body)
	return htmlPart, plain, nil
}

// textParts splits a (possibly nested multipart) body into its plain-text
// and HTML parts. Anything that is not text/html counts as plain.
func textParts(h mail.Header, body []byte) (plain, htmlPart string) {
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return string(decodeBody(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeBody(body, cte)), ""
		}
		reader := multipart.NewReader(bytes.NewReader(body), boundary)
		for {
			part, err := reader.NextPart()
			if err != nil {
				break
			}
			partBody, _ := io.ReadAll(io.LimitReader(part, maxMessageBytes))
			p, ht := textParts(mail.Header(part.Header), partBody)
			if len(p) > len(plain) {
				plain = p
			}
			if len(ht) > len(htmlPart) {
				htmlPart = ht
			}
		}
		return plain, htmlPart
	}

	decoded := string(decodeBody(body, cte))
	if strings.HasPrefix(mediaType, "text/html") {
		return "", decoded
	}
	return decoded, ""
}

func decodeBody(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, maxMessageBytes))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, maxMessageBytes))
		return out
	default:
		return b
	}
}

// alertCard accumulates fields for one job id while the anchors of an
// alert message are walked.
type alertCard struct {
	title    string
	company  string
	location string
	salary   string
	url      string
}

// parseAlertHTML extracts job cards from a job-alert message body. Each
// posting appears behind several anchors (logo, title, footer link), so
// anchors merge by the numeric job id and the record is emitted once, in
// first-seen order. Cards that never yield a title are dropped.
func parseAlertHTML(htmlBody string) ([]model.RawJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, fmt.Errorf("parse alert html: %w", err)
	}

	byID := make(map[string]*alertCard)
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.Contains(strings.ToLower(href), "linkedin.com") {
			return
		}
		m := jobViewRegex.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]

		card, ok := byID[id]
		if !ok {
			// Tracking queries differ per mail, so the URL is rebuilt
			// from the job id to keep dedup stable across alerts.
			card = &alertCard{url: "https://www.linkedin.com/jobs/view/" + id + "/"}
			byID[id] = card
			order = append(order, id)
		}

		if card.title == "" {
			card.title = anchorTitle(a)
		}

		container := a.Closest("table")
		if container.Length() == 0 {
			container = a.Closest("tr")
		}
		if container.Length() == 0 {
			container = a.Parent()
		}

		// "Company · Location" sits in its own <p> within the card.
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			if card.company != "" || card.location != "" {
				return
			}
			t := collapseSpace(p.Text())
			if company, location, ok := strings.Cut(t, " · "); ok {
				card.company = strings.TrimSpace(company)
				card.location = strings.TrimSpace(location)
			}
		})

		if card.salary == "" {
			if s := alertSalaryRegex.FindString(collapseSpace(container.Text())); s != "" {
				card.salary = strings.TrimSpace(s)
			}
		}
	})

	out := make([]model.RawJob, 0, len(order))
	for _, id := range order {
		card := byID[id]
		if card.title == "" {
			continue
		}
		raw := model.RawJob{
			model.FieldTitle: card.title,
			model.FieldURL:   card.url,
		}
		if card.company != "" {
			raw[model.FieldCompany] = card.company
		}
		if card.location != "" {
			raw[model.FieldLocation] = card.location
			if strings.Contains(strings.ToLower(card.location), "remote") {
				raw[model.FieldJobType] = "Remote"
			}
		}
		if card.salary != "" {
			raw[model.FieldSalary] = card.salary
		}
		out = append(out, raw)
	}
	return out, nil
}

// titleJunk are badge strings the alert template appends to anchor text.
var titleJunk = []string{
	"Actively recruiting",
	"Easy Apply",
	"Promoted",
}

// anchorTitle returns the anchor's text if it plausibly is the job title,
// or "" for logo anchors, badges and call-to-action links.
func anchorTitle(a *goquery.Selection) string {
	t := collapseSpace(a.Text())
	for _, junk := range titleJunk {
		t = strings.TrimSpace(strings.ReplaceAll(t, junk, ""))
	}
	if t == "" || strings.Contains(t, " · ") {
		return ""
	}
	low := strings.ToLower(t)
	if low == "view job" || low == "see all jobs" ||
		strings.Contains(low, "applicant") || strings.Contains(low, "connection") {
		return ""
	}
	return t
}

// collapseSpace normalizes non-breaking spaces and collapses runs of
// whitespace to single spaces.
func collapseSpace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
