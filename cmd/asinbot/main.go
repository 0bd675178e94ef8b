// Package main provides the entry point for the asinbot CLI.
//
// asinbot looks up cross-marketplace prices for Amazon product identifiers
// (ASINs). It runs either as a Telegram bot or as a one-shot lookup tool.
//
// Usage:
//
//	asinbot serve
//	asinbot lookup B0DZGHZQ7V
//
// See --help for all available options.
package main

func main() {
	Execute()
}
