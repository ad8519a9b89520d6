package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "crowdlingo/contexts/translation-quality/review-engine/application"
	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/review-engine/domain/errors"
	"crowdlingo/contexts/translation-quality/review-engine/ports"
)

// ReviewQueries serves the read side of the review ledger and the live
// consensus aggregate. Reads never mutate state; the summary is recomputed
// from the ledger on every call so it cannot drift from the source of truth.
type ReviewQueries struct {
	Reviews     ports.ReviewRepository
	Submissions ports.SubmissionRepository
	Logger      *slog.Logger
}

// GetSubmission returns the submission with its stored aggregate fields.
func (q ReviewQueries) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return entities.Submission{}, domainerrors.ErrInvalidReviewInput
	}
	return q.Submissions.GetSubmission(ctx, submissionID)
}

// GetReview returns a single ledger row by its identifier.
func (q ReviewQueries) GetReview(ctx context.Context, reviewID string) (entities.Review, error) {
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return entities.Review{}, domainerrors.ErrInvalidReviewInput
	}
	return q.Reviews.GetReview(ctx, reviewID)
}

// GetConsensus recomputes the consensus summary from the current review set.
func (q ReviewQueries) GetConsensus(ctx context.Context, submissionID string) (entities.ConsensusSummary, error) {
	logger := application.ResolveLogger(q.Logger)
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return entities.ConsensusSummary{}, domainerrors.ErrInvalidReviewInput
	}

	submission, err := q.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return entities.ConsensusSummary{}, err
	}
	reviews, err := q.Reviews.ListReviewsBySubmission(ctx, submissionID)
	if err != nil {
		return entities.ConsensusSummary{}, err
	}

	summary := entities.ConsensusSummary{
		SubmissionID: submissionID,
		Status:       submission.Status,
	}
	for _, review := range reviews {
		if review.Superseded {
			continue
		}
		summary.ReviewCount++
		summary.WeightedReviewScore += review.EffectiveScore()
		summary.TotalWeight += review.ReviewWeight
		switch review.Action {
		case entities.ReviewActionAccept:
			summary.Accepts++
		case entities.ReviewActionReject:
			summary.Rejects++
		case entities.ReviewActionSuggestEdit:
			summary.SuggestedEdits++
		}
	}

	logger.Debug("consensus summary computed",
		"event", "consensus_summary_computed",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"submission_id", submissionID,
		"review_count", summary.ReviewCount,
		"weighted_review_score", summary.WeightedReviewScore,
	)
	return summary, nil
}

// ListReviewsBySubmission returns the full ledger for a submission, newest
// first, superseded rows included for audit.
func (q ReviewQueries) ListReviewsBySubmission(ctx context.Context, submissionID string) ([]entities.Review, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return nil, domainerrors.ErrInvalidReviewInput
	}
	reviews, err := q.Reviews.ListReviewsBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	sortReviewsNewestFirst(reviews)
	return reviews, nil
}

// ListReviewsByReviewer returns one reviewer's ledger history, newest first.
func (q ReviewQueries) ListReviewsByReviewer(ctx context.Context, reviewerID string) ([]entities.Review, error) {
	reviewerID = strings.TrimSpace(reviewerID)
	if reviewerID == "" {
		return nil, domainerrors.ErrInvalidReviewInput
	}
	reviews, err := q.Reviews.ListReviewsByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	sortReviewsNewestFirst(reviews)
	return reviews, nil
}

// ReviewerStats aggregates one reviewer's agreement history across the ledger.
type ReviewerStats struct {
	ReviewerID        string
	TotalReviews      int
	Accepts           int
	Rejects           int
	SuggestedEdits    int
	AgreementVotes    int
	DisagreementVotes int
}

// GetReviewerStats folds the reviewer's non-superseded ledger rows into
// aggregate agreement counts.
func (q ReviewQueries) GetReviewerStats(ctx context.Context, reviewerID string) (ReviewerStats, error) {
	reviewerID = strings.TrimSpace(reviewerID)
	if reviewerID == "" {
		return ReviewerStats{}, domainerrors.ErrInvalidReviewInput
	}
	reviews, err := q.Reviews.ListReviewsByReviewer(ctx, reviewerID)
	if err != nil {
		return ReviewerStats{}, err
	}

	stats := ReviewerStats{ReviewerID: reviewerID}
	for _, review := range reviews {
		if review.Superseded {
			continue
		}
		stats.TotalReviews++
		stats.AgreementVotes += review.AgreementVotes
		stats.DisagreementVotes += review.DisagreementVotes
		switch review.Action {
		case entities.ReviewActionAccept:
			stats.Accepts++
		case entities.ReviewActionReject:
			stats.Rejects++
		case entities.ReviewActionSuggestEdit:
			stats.SuggestedEdits++
		}
	}
	return stats, nil
}

func sortReviewsNewestFirst(reviews []entities.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].ReviewedAt.Equal(reviews[j].ReviewedAt) {
			return reviews[i].ReviewID > reviews[j].ReviewID
		}
		return reviews[i].ReviewedAt.After(reviews[j].ReviewedAt)
	})
}
