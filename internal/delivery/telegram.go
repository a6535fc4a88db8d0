// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinoweek/internal/formatting"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/metrics"
)

// DefaultTelegramAPIURL is the public Bot API endpoint.
const DefaultTelegramAPIURL = "https://api.telegram.org"

// TelegramConfig holds the Bot API settings.
type TelegramConfig struct {
	BotToken  string
	ChatID    string
	ParseMode string
	APIURL    string
	Timeout   time.Duration
}

// TelegramChannel implements Telegram Bot API delivery.
type TelegramChannel struct {
	cfg    TelegramConfig
	client *http.Client
}

// NewTelegramChannel creates a Telegram delivery channel.
func NewTelegramChannel(cfg TelegramConfig) *TelegramChannel {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultTelegramAPIURL
	}
	if cfg.ParseMode == "" {
		cfg.ParseMode = "Markdown"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &TelegramChannel{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) SupportsMarkdown() bool { return true }

func (c *TelegramChannel) MaxContentLength() int { return formatting.TelegramMaxLength }

// Validate checks that both credentials are present and the token looks like
// "<bot id>:<secret>".
func (c *TelegramChannel) Validate() error {
	var missing []string
	if c.cfg.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.cfg.ChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	id, secret, ok := strings.Cut(c.cfg.BotToken, ":")
	if !ok || id == "" || secret == "" {
		return errors.New("invalid Telegram bot token format")
	}
	return nil
}

// TelegramSendMessageRequest is the sendMessage request body.
type TelegramSendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// TelegramAPIResponse is the Bot API response envelope.
type TelegramAPIResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Result      *struct {
		MessageID int64 `json:"message_id"`
	} `json:"result,omitempty"`
	Parameters *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// Send posts msg.Text, truncated to the Telegram limit, to the configured chat.
func (c *TelegramChannel) Send(ctx context.Context, msg *Message) (*Result, error) {
	if msg == nil {
		return nil, errors.New("nil message")
	}
	result := &Result{Channel: c.Name()}
	defer func() { recordAttempt(result) }()

	if err := c.Validate(); err != nil {
		result.ErrorMessage = err.Error()
		result.ErrorCode = ErrorCodeInvalidConfig
		return result, nil
	}

	payload, err := json.Marshal(TelegramSendMessageRequest{
		ChatID:                c.cfg.ChatID,
		Text:                  formatting.Truncate(msg.Text, c.MaxContentLength()),
		ParseMode:             c.cfg.ParseMode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to marshal payload: %v", err)
		result.ErrorCode = ErrorCodeUnknown
		return result, nil
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(c.cfg.APIURL, "/"), c.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		// the error text would contain the token
		result.ErrorMessage = "failed to create request"
		result.ErrorCode = ErrorCodeInvalidConfig
		return result, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		result.ErrorCode = classifyHTTPError(err)
		result.ErrorMessage = "failed to send message: " + result.ErrorCode
		result.IsTransient = isTransient(result.ErrorCode)
		return result, nil
	}
	defer resp.Body.Close()
	result.ResponseCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to read response: %v", err)
		result.ErrorCode = ErrorCodeUnknown
		return result, nil
	}
	var apiResp TelegramAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to parse response (status %d): %v", resp.StatusCode, err)
		result.ErrorCode = classifyTelegramError(resp.StatusCode, "")
		result.IsTransient = isTransient(result.ErrorCode)
		return result, nil
	}

	if apiResp.OK {
		now := time.Now()
		result.Success = true
		result.DeliveredAt = &now
		if apiResp.Result != nil {
			result.ExternalID = fmt.Sprintf("%d", apiResp.Result.MessageID)
		}
		logging.Ctx(ctx).Info().Str("channel", c.Name()).Str("message_id", result.ExternalID).Msg("Telegram message sent")
		return result, nil
	}

	code := apiResp.ErrorCode
	if code == 0 {
		code = resp.StatusCode
	}
	result.ErrorMessage = apiResp.Description
	result.ErrorCode = classifyTelegramError(code, apiResp.Description)
	result.IsTransient = isTransient(result.ErrorCode)
	if apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
		retryAfter := time.Duration(apiResp.Parameters.RetryAfter) * time.Second
		result.RetryAfter = &retryAfter
	}
	return result, nil
}

// classifyTelegramError maps a Bot API error code to an ErrorCode.
func classifyTelegramError(code int, description string) string {
	switch {
	case code == http.StatusUnauthorized:
		return ErrorCodeAuthFailed
	case code == http.StatusForbidden:
		return ErrorCodeAuthFailed
	case code == http.StatusBadRequest:
		if strings.Contains(description, "chat not found") {
			return ErrorCodeRecipientNotFound
		}
		if strings.Contains(description, "message is too long") {
			return ErrorCodeContentTooLarge
		}
		return ErrorCodeBadRequest
	case code == http.StatusTooManyRequests:
		return ErrorCodeRateLimited
	case code >= 500:
		return ErrorCodeServerError
	default:
		return ErrorCodeUnknown
	}
}

func classifyHTTPError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrorCodeTimeout
	case strings.Contains(err.Error(), "connection"), strings.Contains(err.Error(), "refused"):
		return ErrorCodeConnectionFailed
	default:
		return ErrorCodeUnknown
	}
}

func recordAttempt(r *Result) {
	label := "success"
	if !r.Success {
		label = strings.ToLower(r.ErrorCode)
	}
	metrics.DeliveryAttempts.WithLabelValues(r.Channel, label).Inc()
}
