package notify

import "errors"

var (
	ErrInvalidWebhook  = errors.New("invalid webhook")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidChannel  = errors.New("invalid channel")
	ErrInvalidIcon     = errors.New("invalid icon")
	ErrDelivery        = errors.New("message delivery failed")
)
