// Package reviewengine implements the weighted-review consensus engine inside
// the translation-quality context.
//
// The module owns the review ledger (submit/update with immutable reputation
// snapshots), consensus aggregation over weighted reviews, the ELO-style
// reputation updater, and review-related event production/consumption through
// outbox-backed workers. Business rules live in the application and domain
// layers; infrastructure stays behind ports and adapters.
package reviewengine
