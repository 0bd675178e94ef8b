// Package bot answers chat messages with price lookups.
//
// Handler validates the identifier, sends a progress note, resolves prices
// and replies with the product photo and a caption, falling back to a text
// reply when the photo cannot be delivered.
package bot
