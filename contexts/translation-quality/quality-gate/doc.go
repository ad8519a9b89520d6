// Package qualitygate decides which consensus-approved translations are good
// enough to feed ML training.
//
// The module scores submissions across completeness, GPS accuracy, photo
// evidence, response time, and consistency, flags anomalous contribution
// patterns, and materializes validated translation pairs for export. Pair
// eligibility follows review outcomes: a later rejection withdraws a pair
// from the corpus without erasing its export history.
package qualitygate
