package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/JoseAndresM/LKND/internal/config"
	"github.com/JoseAndresM/LKND/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts Markdown messages to one chat via the Bot API.
// Long texts are split into chunks under the channel's message limit and
// sends are paced so the bot never trips the API rate limit.
type TelegramNotifier struct {
	apiBase   string
	token     string
	chatID    string
	batchSize int
	maxLen    int
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewTelegramNotifier returns a notifier for the configured chat.
func NewTelegramNotifier(cfg config.NotificationConfig, client *http.Client, logger *slog.Logger) *TelegramNotifier {
	delay := cfg.SendDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &TelegramNotifier{
		apiBase:   "https://api.telegram.org",
		token:     cfg.Token,
		chatID:    cfg.ChatID,
		batchSize: cfg.BatchSize,
		maxLen:    cfg.MaxMessageLen,
		client:    client,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		logger:    logger,
	}
}

// Notify formats the batch as a digest and sends it. An empty batch sends
// nothing.
func (t *TelegramNotifier) Notify(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return t.Send(ctx, FormatBatch(jobs, t.batchSize))
}

// Send delivers one Markdown text, chunked to the message limit. When a
// chunk fails the error reports how much got through before the failure.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	parts := SplitMessage(text, t.maxLen)
	for i, part := range parts {
		if err := t.limiter.Wait(ctx); err != nil {
			return &model.DeliveryError{Sent: i, Failed: len(parts) - i, Err: err}
		}
		if err := t.sendMessage(ctx, part); err != nil {
			return &model.DeliveryError{Sent: i, Failed: len(parts) - i, Err: err}
		}
	}
	t.logger.Info("telegram notification delivered", "chunks", len(parts))
	return nil
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to telegram: %w", err)
	}
	defer resp.Body.Close()

	var tr sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode telegram response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !tr.OK {
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, tr.Description)
	}
	return nil
}
