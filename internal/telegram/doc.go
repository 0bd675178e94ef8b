// Package telegram is a small Telegram Bot API client.
//
// It covers what the bot needs: getMe for health probing, long-polling
// getUpdates, sendMessage and multipart sendPhoto. Poller drives the update
// loop and hands every text message to a TextHandler in its own goroutine.
//
// The bot token is part of every request path. Errors returned by this
// package never include the request URL.
package telegram
