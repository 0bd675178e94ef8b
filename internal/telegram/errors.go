package telegram

import "errors"

var (
	// ErrMissingToken is returned when a client is created without a bot token.
	ErrMissingToken = errors.New("telegram bot token is required")

	// ErrAPI is returned when the Bot API answers with ok=false.
	ErrAPI = errors.New("telegram API error")
)
