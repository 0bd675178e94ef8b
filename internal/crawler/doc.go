// Package crawler fetches and parses the pages asinbot depends on.
//
// # Components
//
//   - PriceParser: turns an aggregator page into a model.PriceTable
//   - ProductParser: extracts the image URL and title from a retail product page
//   - Fetcher: performs one aggregator request and parses the result
//   - Enricher: performs one retail request and never fails
//
// Upstream markup is an external contract that changes without notice.
// Selector logic lives only in the parsers so it can be swapped without
// touching the retry policy in package pipeline.
//
// # Usage
//
//	parser := crawler.NewPriceParser(regions, currency.NewConverter(regions))
//	fetcher := crawler.NewFetcher(clients, parser)
//	table, err := fetcher.FetchPrices(ctx, asin)
package crawler
