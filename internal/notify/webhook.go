package notify

import (
	"fmt"
	"regexp"
	"strings"
)

var webhookPattern = regexp.MustCompile(`^T[A-Z0-9]{8}/B[A-Z0-9]{8}/[A-Za-z0-9]{24}$`)

// WebhookID is a validated "T.../B.../..." webhook identifier.
type WebhookID string

// ValidateWebhook accepts either the bare identifier or a full URL starting
// with host.
func ValidateWebhook(host, raw string) (WebhookID, error) {
	id := strings.TrimSpace(raw)

	prefix := strings.TrimRight(host, "/") + "/"
	if host != "" && strings.HasPrefix(id, prefix) {
		id = strings.TrimPrefix(id, prefix)
	}

	if !webhookPattern.MatchString(id) {
		return "", fmt.Errorf("%w: unsupported format", ErrInvalidWebhook)
	}

	return WebhookID(id), nil
}
