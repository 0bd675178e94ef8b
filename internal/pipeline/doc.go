// Package pipeline resolves an ASIN into prices and product details.
//
// A resolution runs as an ordered list of steps over a shared
// model.Resolution: PriceStep queries the aggregator with bounded linear
// backoff, then EnrichStep looks up the image and title for the anchor
// region. Resolver wraps a pipeline and renders the result for callers
// that only need text, and BatchProcessor resolves many identifiers
// concurrently with errgroup.
//
// Steps never turn upstream failures into errors. A step returns an error
// only when the context is cancelled; everything else is recorded on the
// resolution as an Outcome.
package pipeline
