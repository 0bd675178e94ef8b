// Package report renders resolutions for chat replies and CLI output.
//
// ChatRenderer produces the exact reply texts sent by the bot. The Writer
// implementations (text, Markdown, JSON) are used by the lookup command.
package report
