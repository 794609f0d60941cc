package notify

import "time"

const (
	DefaultHost      = "https://hooks.slack.com/services"
	DefaultUserAgent = "ftpdeploy HTTP client / 1.0"
)

type Config struct {
	// Host is the webhook endpoint prefix; the webhook id is appended to it.
	Host    string
	Webhook string

	Username  string
	Channel   string
	IconEmoji string
	// Prefix starts every notice, e.g. the repository name.
	Prefix string

	Timeout   time.Duration
	UserAgent string
}
