// Package notify posts deployment notices to a Slack-compatible webhook.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/apiarycd/ftpdeploy/internal/await"
	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// MaxDetails keeps error notices under the ~12,000 character message
	// ceiling of the chat service.
	MaxDetails      = 11000
	TruncatedMarker = "\n\n*** output too long -- truncated ***\n"

	minChannelLength = 2
	minIconLength    = 3
	maxResponseBody  = 512
)

type payload struct {
	Username  *string `json:"username,omitempty"`
	Channel   *string `json:"channel,omitempty"`
	Text      string  `json:"text"`
	IconEmoji *string `json:"icon_emoji,omitempty"`
}

type Messenger struct {
	host    string
	webhook WebhookID

	username *string
	channel  *string
	icon     *string
	prefix   string

	timeout   time.Duration
	userAgent string

	adapter *await.Adapter
	logger  *zap.Logger
}

func NewMessenger(cfg Config, errs *errlog.Log, logger *zap.Logger) (*Messenger, error) {
	host := strings.TrimRight(lo.Ternary(cfg.Host == "", DefaultHost, cfg.Host), "/")

	webhook, err := ValidateWebhook(host, cfg.Webhook)
	if err != nil {
		return nil, err
	}

	if cfg.Channel != "" && utf8.RuneCountInString(cfg.Channel) < minChannelLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, cfg.Channel)
	}
	if cfg.IconEmoji != "" && utf8.RuneCountInString(cfg.IconEmoji) < minIconLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIcon, cfg.IconEmoji)
	}
	if cfg.Username != "" && strings.TrimSpace(cfg.Username) == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, cfg.Username)
	}

	return &Messenger{
		host:    host,
		webhook: webhook,

		username: lo.EmptyableToPtr(cfg.Username),
		channel:  lo.EmptyableToPtr(cfg.Channel),
		icon:     lo.EmptyableToPtr(cfg.IconEmoji),
		prefix:   cfg.Prefix,

		timeout:   lo.Ternary(cfg.Timeout > 0, cfg.Timeout, 10*time.Second),
		userAgent: lo.Ternary(cfg.UserAgent == "", DefaultUserAgent, cfg.UserAgent),

		adapter: await.New(errs),
		logger:  logger,
	}, nil
}

// Notice posts "<prefix>: <message>.".
func (m *Messenger) Notice(ctx context.Context, message string) error {
	return m.Send(ctx, m.format(message))
}

// ErrorNotice posts a notice followed by a fenced block with details,
// truncated to MaxDetails characters.
func (m *Messenger) ErrorNotice(ctx context.Context, message, details string) error {
	text := m.format(message)
	if details = TruncateDetails(details); details != "" {
		text += "\n*Error details:*\n```\n" + details + "```"
	}

	return m.Send(ctx, text)
}

// Send posts text as is.
func (m *Messenger) Send(ctx context.Context, text string) error {
	body := payload{
		Username:  m.username,
		Channel:   m.channel,
		Text:      text,
		IconEmoji: m.icon,
	}

	_, err := await.Wait(ctx, m.adapter, func(context.Context) (struct{}, error) {
		return struct{}{}, m.post(body)
	})
	if err != nil {
		m.logger.Error("failed to deliver message", zap.Error(err))
		return err
	}

	m.logger.Debug("message delivered", zap.Int("length", len(text)))
	return nil
}

func (m *Messenger) post(body payload) error {
	agent := fiber.Post(m.host + "/" + string(m.webhook))
	agent.UserAgent(m.userAgent)
	agent.Timeout(m.timeout)
	agent.JSON(body)

	if err := agent.Parse(); err != nil {
		return fmt.Errorf("%w: %s", ErrDelivery, err.Error())
	}

	code, resp, errs := agent.Bytes()
	if len(errs) > 0 {
		// Flatten to text so the transport's error types stay inside this package.
		return fmt.Errorf("%w: %s", ErrDelivery, multierr.Combine(errs...).Error())
	}

	if code != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrDelivery, code, clip(string(resp), maxResponseBody))
	}

	return nil
}

func (m *Messenger) format(message string) string {
	if m.prefix == "" {
		return message + "."
	}

	return m.prefix + ": " + message + "."
}

// TruncateDetails cuts details to MaxDetails characters and appends
// TruncatedMarker when anything was dropped.
func TruncateDetails(details string) string {
	if utf8.RuneCountInString(details) <= MaxDetails {
		return details
	}

	return clip(details, MaxDetails) + TruncatedMarker
}

func clip(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}

	return s
}
