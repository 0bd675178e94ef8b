// Package model defines the core data structures shared by asinbot.
//
// This package contains the following main types:
//   - ASIN: A validated Amazon product identifier
//   - RegionCode and RegionTable: Marketplace codes with labels and rates
//   - PriceEntry and PriceTable: The normalized result of one aggregator page
//   - Resolution: Everything gathered while resolving one identifier
//
// The models are serializable to JSON for the lookup command's report output.
package model
