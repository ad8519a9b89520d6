// Package reputationservice is the read side of contributor reputation:
// contributor profiles with rank progress and the rank-filtered leaderboard.
// Reputation is written exclusively by the review engine; this module only
// projects it.
package reputationservice
