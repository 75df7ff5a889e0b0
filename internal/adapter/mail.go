package adapter

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/model"
)

var _ model.Source = (*Mail)(nil)

// mailLookback bounds the server-side search. Alert mail older than this
// is stale even if it was never opened.
const mailLookback = 7 * 24 * time.Hour

// Mail reads job-alert emails from an IMAP mailbox. Each matching message
// is parsed for job cards and then marked seen so the next cycle does not
// process it again. Non-matching mail is left untouched.
type Mail struct {
	name        string
	host        string
	username    string
	password    string
	mailbox     string
	sender      string
	maxMessages int
	logger      *slog.Logger
}

// NewMail creates a reader for one configured mail source. The password
// is resolved by the caller, never by this package.
func NewMail(src config.SourceConfig, password string, logger *slog.Logger) *Mail {
	return &Mail{
		name:        src.Name,
		host:        src.Mail.Host,
		username:    src.Mail.Username,
		password:    password,
		mailbox:     src.Mail.Mailbox,
		sender:      src.Mail.Sender,
		maxMessages: src.Mail.MaxMessages,
		logger:      logger,
	}
}

// Name returns the configured source name.
func (m *Mail) Name() string {
	return m.name
}

// Fetch connects to the mailbox, pulls recent unseen messages from the
// configured sender and extracts the job cards from their HTML bodies.
func (m *Mail) Fetch(ctx context.Context) ([]model.RawJob, error) {
	c, err := imapclient.DialTLS(m.host, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", m.host, err)
	}
	defer c.Close()

	// Unblock a hung connection when the cycle deadline passes.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(m.username, m.password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login %s: %w", m.username, err)
	}
	defer func() { _ = c.Logout().Wait() }()

	if _, err := c.Select(m.mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", m.mailbox, err)
	}

	messages, err := m.fetchUnseen(ctx, c)
	if err != nil {
		return nil, err
	}

	var jobs []model.RawJob
	var processed []imap.UID
	for _, msg := range messages {
		if !m.fromSender(msg.from) {
			continue
		}
		cards, err := m.parseMessage(msg)
		if err != nil {
			m.logger.Debug("alert message unparseable", "source", m.name, "uid", msg.uid, "error", err)
			continue
		}
		jobs = append(jobs, cards...)
		processed = append(processed, msg.uid)
	}

	if err := markSeen(c, processed); err != nil {
		// The jobs are already extracted; a failed flag update only means
		// the same messages get parsed again next cycle.
		m.logger.Warn("failed to mark alert mail seen", "source", m.name, "error", err)
	}

	return jobs, nil
}

// alertMessage is one fetched message before card extraction.
type alertMessage struct {
	uid  imap.UID
	from string
	raw  []byte
}

// fetchUnseen pulls up to maxMessages unseen messages by UID, newest
// first, using BODY.PEEK[] so fetching alone never sets \Seen.
func (m *Mail) fetchUnseen(ctx context.Context, c *imapclient.Client) ([]alertMessage, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().Add(-mailLookback),
	}

	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Newest first, then cap.
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > m.maxMessages {
		uids = uids[:m.maxMessages]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]alertMessage, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		msg := alertMessage{uid: buf.UID}
		if buf.Envelope != nil {
			msg.from = joinAddresses(buf.Envelope.From)
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			msg.raw = append([]byte(nil), b...)
		}
		out = append(out, msg)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// parseMessage extracts job cards from one message body. Alert mail is
// HTML; a plain-text-only message yields no cards.
func (m *Mail) parseMessage(msg alertMessage) ([]model.RawJob, error) {
	htmlBody, _, err := messageBody(msg.raw)
	if err != nil {
		return nil, err
	}
	if htmlBody == "" {
		return nil, nil
	}
	return parseAlertHTML(htmlBody)
}

// fromSender reports whether the envelope From matches the configured
// alert sender.
func (m *Mail) fromSender(from string) bool {
	return strings.Contains(strings.ToLower(from), strings.ToLower(m.sender))
}

// markSeen adds \Seen to the given UIDs. In go-imap v2, Store returns a
// command whose Close delivers the final status; there is no Wait.
func markSeen(c *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

func joinAddresses(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		addr := strings.TrimSpace(addrs[i].Addr())
		if addr == "" {
			addr = strings.TrimSpace(addrs[i].Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}
