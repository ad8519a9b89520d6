package commands

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	application "crowdlingo/contexts/translation-quality/review-engine/application"
	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/review-engine/domain/errors"
	"crowdlingo/contexts/translation-quality/review-engine/domain/scoring"
	"crowdlingo/contexts/translation-quality/review-engine/ports"
	"crowdlingo/internal/shared/keylock"
)

// SubmitReviewCommand is the write-model input for review creation.
type SubmitReviewCommand struct {
	SubmissionID  string
	ReviewerID    string
	Action        entities.ReviewAction
	QualityRating int
	Feedback      string
	SuggestedEdit string
	Notes         entities.ImprovementNotes
}

// UpdateReviewCommand amends the caller's existing review on a submission.
type UpdateReviewCommand struct {
	SubmissionID  string
	ReviewerID    string
	Action        entities.ReviewAction
	QualityRating int
	Feedback      string
	SuggestedEdit string
	Notes         entities.ImprovementNotes
}

// RegisterSubmissionCommand projects an intake submission into the engine.
type RegisterSubmissionCommand struct {
	SubmissionID   string
	SubmitterID    string
	SourceText     string
	TargetText     string
	SourceLanguage string
	TargetLanguage string
	Domain         string
	Difficulty     string
}

// ResubmitSubmissionCommand starts a fresh review cycle after needs_revision.
type ResubmitSubmissionCommand struct {
	SubmissionID string
	SubmitterID  string
	SourceText   string
	TargetText   string
}

// ReviewResult returns the recorded review plus the submission's aggregate
// after re-aggregation.
type ReviewResult struct {
	Review    entities.Review
	Consensus entities.ConsensusSummary
	Status    entities.SubmissionStatus
}

// ReviewUseCase orchestrates the review ledger, the consensus aggregator and
// the reputation updater. All read-modify-write sections on one submission or
// one contributor run under per-entity locks; aggregate writes additionally
// carry an optimistic version so stale recomputes never clobber fresh ones.
type ReviewUseCase struct {
	Reviews     ports.ReviewRepository
	Submissions ports.SubmissionRepository
	Reputations ports.ReputationRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Policy      scoring.Policy
	Locks       *keylock.Registry
	Logger      *slog.Logger

	// MaxAggregateRetries bounds optimistic-conflict retries before the
	// caller sees ErrAggregationConflict. Zero means the default of 3.
	MaxAggregateRetries int
}

// SubmitReview records a new review, snapshotting the reviewer's current
// reputation and weight into the ledger row, then re-aggregates consensus.
func (uc ReviewUseCase) SubmitReview(ctx context.Context, cmd SubmitReviewCommand) (ReviewResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	reviewerID := strings.TrimSpace(cmd.ReviewerID)
	logger.Info("review submit processing started",
		"event", "review_submit_started",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"submission_id", submissionID,
		"reviewer_id", reviewerID,
		"action", string(cmd.Action),
	)
	if err := validateReviewInput(submissionID, reviewerID, cmd.Action, cmd.QualityRating); err != nil {
		logger.Warn("review submit validation failed",
			"event", "review_submit_validation_failed",
			"module", "translation-quality/review-engine",
			"layer", "application",
			"submission_id", submissionID,
			"reviewer_id", reviewerID,
			"error", err.Error(),
		)
		return ReviewResult{}, err
	}

	unlock := uc.lock("submission:" + submissionID)
	defer unlock()

	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return ReviewResult{}, err
	}
	if strings.EqualFold(strings.TrimSpace(submission.SubmitterID), reviewerID) {
		return ReviewResult{}, domainerrors.ErrSelfReviewNotAllowed
	}
	if !submission.Reviewable() {
		return ReviewResult{}, domainerrors.ErrSubmissionNotReviewable
	}
	if _, found, err := uc.Reviews.GetReviewByIdentity(ctx, submissionID, reviewerID); err != nil {
		return ReviewResult{}, err
	} else if found {
		return ReviewResult{}, domainerrors.ErrDuplicateReview
	}

	now := uc.now()
	reputation, err := uc.reviewerSnapshot(ctx, reviewerID, now)
	if err != nil {
		return ReviewResult{}, err
	}

	reviewID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return ReviewResult{}, err
	}
	review := entities.Review{
		ReviewID:           reviewID,
		SubmissionID:       submissionID,
		ReviewerID:         reviewerID,
		Action:             cmd.Action,
		QualityRating:      cmd.QualityRating,
		Feedback:           strings.TrimSpace(cmd.Feedback),
		SuggestedEdit:      strings.TrimSpace(cmd.SuggestedEdit),
		Notes:              cmd.Notes,
		ReviewerReputation: reputation.ReputationScore,
		ReviewWeight:       reputation.ReviewWeight,
		WeightedScore:      uc.Policy.NormalizedRating(cmd.Action, cmd.QualityRating) * reputation.ReviewWeight,
		ReviewedAt:         now,
		UpdatedAt:          now,
	}
	if err := uc.Reviews.SaveReview(ctx, review); err != nil {
		return ReviewResult{}, err
	}
	// Counted only after the insert; a refused ledger write must not inflate
	// the reviewer's contribution count.
	if err := uc.countReviewSubmitted(ctx, reviewerID, now); err != nil {
		return ReviewResult{}, err
	}
	if err := uc.appendEvent(ctx, eventReviewSubmitted, submissionID, now, map[string]any{
		"review_id":      review.ReviewID,
		"submission_id":  review.SubmissionID,
		"reviewer_id":    review.ReviewerID,
		"action":         string(review.Action),
		"review_weight":  review.ReviewWeight,
		"weighted_score": review.WeightedScore,
	}); err != nil {
		return ReviewResult{}, err
	}

	updated, summary, err := uc.aggregateLocked(ctx, submissionID, now)
	if err != nil {
		return ReviewResult{}, err
	}

	logger.Info("review submitted",
		"event", "review_submitted",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"review_id", review.ReviewID,
		"submission_id", submissionID,
		"reviewer_id", reviewerID,
		"weighted_score", review.WeightedScore,
		"submission_status", string(updated.Status),
	)
	return ReviewResult{Review: review, Consensus: summary, Status: updated.Status}, nil
}

// UpdateReview replaces the caller's existing decision. The reviewer may have
// gained or lost reputation since the original review, so the snapshot is
// retaken; the original row's history lives on in the updated row's ReviewedAt.
func (uc ReviewUseCase) UpdateReview(ctx context.Context, cmd UpdateReviewCommand) (ReviewResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	reviewerID := strings.TrimSpace(cmd.ReviewerID)
	logger.Info("review update processing started",
		"event", "review_update_started",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"submission_id", submissionID,
		"reviewer_id", reviewerID,
		"action", string(cmd.Action),
	)
	if err := validateReviewInput(submissionID, reviewerID, cmd.Action, cmd.QualityRating); err != nil {
		logger.Warn("review update validation failed",
			"event", "review_update_validation_failed",
			"module", "translation-quality/review-engine",
			"layer", "application",
			"submission_id", submissionID,
			"reviewer_id", reviewerID,
			"error", err.Error(),
		)
		return ReviewResult{}, err
	}

	unlock := uc.lock("submission:" + submissionID)
	defer unlock()

	review, found, err := uc.Reviews.GetReviewByIdentity(ctx, submissionID, reviewerID)
	if err != nil {
		return ReviewResult{}, err
	}
	if !found || review.Superseded {
		return ReviewResult{}, domainerrors.ErrReviewNotFound
	}

	now := uc.now()
	reputation, err := uc.ensureReputation(ctx, reviewerID, now)
	if err != nil {
		return ReviewResult{}, err
	}

	review.Action = cmd.Action
	review.QualityRating = cmd.QualityRating
	review.Feedback = strings.TrimSpace(cmd.Feedback)
	review.SuggestedEdit = strings.TrimSpace(cmd.SuggestedEdit)
	review.Notes = cmd.Notes
	review.ReviewerReputation = reputation.ReputationScore
	review.ReviewWeight = reputation.ReviewWeight
	review.WeightedScore = uc.Policy.NormalizedRating(cmd.Action, cmd.QualityRating) * reputation.ReviewWeight
	review.UpdatedAt = now
	if err := uc.Reviews.SaveReview(ctx, review); err != nil {
		return ReviewResult{}, err
	}
	if err := uc.appendEvent(ctx, eventReviewUpdated, submissionID, now, map[string]any{
		"review_id":      review.ReviewID,
		"submission_id":  review.SubmissionID,
		"reviewer_id":    review.ReviewerID,
		"action":         string(review.Action),
		"review_weight":  review.ReviewWeight,
		"weighted_score": review.WeightedScore,
	}); err != nil {
		return ReviewResult{}, err
	}

	updated, summary, err := uc.aggregateLocked(ctx, submissionID, now)
	if err != nil {
		return ReviewResult{}, err
	}

	logger.Info("review updated",
		"event", "review_updated",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"review_id", review.ReviewID,
		"submission_id", submissionID,
		"reviewer_id", reviewerID,
		"submission_status", string(updated.Status),
	)
	return ReviewResult{Review: review, Consensus: summary, Status: updated.Status}, nil
}

// RegisterSubmission projects an intake submission into the engine in the
// submitted state and counts the contribution for the submitter.
func (uc ReviewUseCase) RegisterSubmission(ctx context.Context, cmd RegisterSubmissionCommand) (entities.Submission, error) {
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	submitterID := strings.TrimSpace(cmd.SubmitterID)
	if submissionID == "" || submitterID == "" ||
		strings.TrimSpace(cmd.SourceText) == "" || strings.TrimSpace(cmd.TargetText) == "" {
		return entities.Submission{}, domainerrors.ErrInvalidReviewInput
	}

	unlock := uc.lock("submission:" + submissionID)
	defer unlock()

	now := uc.now()
	submission := entities.Submission{
		SubmissionID:   submissionID,
		SubmitterID:    submitterID,
		SourceText:     strings.TrimSpace(cmd.SourceText),
		TargetText:     strings.TrimSpace(cmd.TargetText),
		SourceLanguage: strings.TrimSpace(cmd.SourceLanguage),
		TargetLanguage: strings.TrimSpace(cmd.TargetLanguage),
		Domain:         strings.TrimSpace(cmd.Domain),
		Difficulty:     strings.TrimSpace(cmd.Difficulty),
		Status:         entities.SubmissionStatusSubmitted,
		SubmittedAt:    now,
		UpdatedAt:      now,
	}
	if err := uc.Submissions.SaveSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}

	if err := uc.countTranslationSubmitted(ctx, submitterID, now); err != nil {
		return entities.Submission{}, err
	}
	if err := uc.appendEvent(ctx, eventSubmissionRegistered, submissionID, now, map[string]any{
		"submission_id": submissionID,
		"submitter_id":  submitterID,
		"language_pair": submission.SourceLanguage + "-" + submission.TargetLanguage,
	}); err != nil {
		return entities.Submission{}, err
	}
	return submission, nil
}

// ResubmitSubmission starts a new review cycle for a needs_revision
// submission. Prior reviews are retained for history but superseded, so the
// live aggregate restarts from zero against the revised text.
func (uc ReviewUseCase) ResubmitSubmission(ctx context.Context, cmd ResubmitSubmissionCommand) (entities.Submission, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID := strings.TrimSpace(cmd.SubmissionID)
	submitterID := strings.TrimSpace(cmd.SubmitterID)
	if submissionID == "" || submitterID == "" || strings.TrimSpace(cmd.TargetText) == "" {
		return entities.Submission{}, domainerrors.ErrInvalidReviewInput
	}

	unlock := uc.lock("submission:" + submissionID)
	defer unlock()

	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(submission.SubmitterID), submitterID) {
		return entities.Submission{}, domainerrors.ErrConflict
	}
	if submission.Status != entities.SubmissionStatusNeedsRevision {
		return entities.Submission{}, domainerrors.ErrResubmissionNotAllowed
	}

	now := uc.now()
	if _, err := uc.Reviews.SupersedeReviewsBySubmission(ctx, submissionID, now); err != nil {
		return entities.Submission{}, err
	}
	if strings.TrimSpace(cmd.SourceText) != "" {
		submission.SourceText = strings.TrimSpace(cmd.SourceText)
	}
	submission.TargetText = strings.TrimSpace(cmd.TargetText)
	submission.Status = entities.SubmissionStatusSubmitted
	submission.ReviewCount = 0
	submission.WeightedReviewScore = 0
	submission.ApprovedAt = nil
	submission.ApprovedBy = ""
	submission.RejectionReason = ""
	submission.UpdatedAt = now
	if err := uc.Submissions.SaveSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}

	if err := uc.countTranslationSubmitted(ctx, submitterID, now); err != nil {
		return entities.Submission{}, err
	}
	if err := uc.appendEvent(ctx, eventSubmissionResubmitted, submissionID, now, map[string]any{
		"submission_id": submissionID,
		"submitter_id":  submitterID,
	}); err != nil {
		return entities.Submission{}, err
	}

	logger.Info("submission resubmitted",
		"event", "submission_resubmitted",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"submission_id", submissionID,
		"submitter_id", submitterID,
	)
	return submission, nil
}

// VerifyAggregate recomputes the aggregate from the current review set and
// compares it against the stored values. Drift is surfaced as
// ErrInvariantViolation after forcing a corrective re-aggregation.
func (uc ReviewUseCase) VerifyAggregate(ctx context.Context, submissionID string) (entities.ConsensusSummary, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return entities.ConsensusSummary{}, domainerrors.ErrInvalidReviewInput
	}

	unlock := uc.lock("submission:" + submissionID)
	defer unlock()

	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return entities.ConsensusSummary{}, err
	}
	reviews, err := uc.Reviews.ListReviewsBySubmission(ctx, submissionID)
	if err != nil {
		return entities.ConsensusSummary{}, err
	}
	summary := summarize(submissionID, submission.Status, reviews)

	if summary.ReviewCount == submission.ReviewCount &&
		math.Abs(summary.WeightedReviewScore-submission.WeightedReviewScore) < 1e-9 {
		return summary, nil
	}

	logger.Error("stored aggregate diverged from review set",
		"event", "review_aggregate_drift_detected",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"submission_id", submissionID,
		"stored_score", submission.WeightedReviewScore,
		"computed_score", summary.WeightedReviewScore,
		"stored_count", submission.ReviewCount,
		"computed_count", summary.ReviewCount,
	)
	if _, _, err := uc.aggregateLocked(ctx, submissionID, uc.now()); err != nil {
		return summary, err
	}
	return summary, domainerrors.ErrInvariantViolation
}

// aggregateLocked recomputes the submission aggregate and applies the state
// machine. Callers must hold the submission lock. The optimistic version
// check still guards against writers outside this process.
func (uc ReviewUseCase) aggregateLocked(
	ctx context.Context,
	submissionID string,
	now time.Time,
) (entities.Submission, entities.ConsensusSummary, error) {
	logger := application.ResolveLogger(uc.Logger)
	retries := uc.MaxAggregateRetries
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
		if err != nil {
			return entities.Submission{}, entities.ConsensusSummary{}, err
		}
		reviews, err := uc.Reviews.ListReviewsBySubmission(ctx, submissionID)
		if err != nil {
			return entities.Submission{}, entities.ConsensusSummary{}, err
		}
		if err := uc.refreshAgreementCounts(ctx, reviews, now); err != nil {
			return entities.Submission{}, entities.ConsensusSummary{}, err
		}

		summary := summarize(submissionID, submission.Status, reviews)
		previousStatus := submission.Status
		nextStatus := uc.resolveStatus(previousStatus, summary, reviews)

		submission.ReviewCount = summary.ReviewCount
		submission.WeightedReviewScore = summary.WeightedReviewScore
		submission.Status = nextStatus
		submission.UpdatedAt = now
		uc.stampTransition(&submission, previousStatus, reviews, now)

		if err := uc.Submissions.SaveAggregate(ctx, submission, submission.AggregateVersion); err != nil {
			if errors.Is(err, domainerrors.ErrAggregationConflict) {
				lastErr = err
				continue
			}
			return entities.Submission{}, entities.ConsensusSummary{}, err
		}
		summary.Status = nextStatus

		if nextStatus != previousStatus {
			if err := uc.onStatusChanged(ctx, submission, previousStatus, summary, reviews, now); err != nil {
				return entities.Submission{}, entities.ConsensusSummary{}, err
			}
		} else if submission.Resolved() {
			// A late or amended review can arrive while the outcome stands;
			// settle only the delta of unsettled reviews.
			if err := uc.settleReputation(ctx, submission, summary, reviews, now); err != nil {
				return entities.Submission{}, entities.ConsensusSummary{}, err
			}
		}
		return submission, summary, nil
	}

	logger.Error("aggregate recompute exhausted retries",
		"event", "review_aggregate_conflict",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"submission_id", submissionID,
		"retries", retries,
	)
	if lastErr == nil {
		lastErr = domainerrors.ErrAggregationConflict
	}
	return entities.Submission{}, entities.ConsensusSummary{}, lastErr
}

// resolveStatus applies the decision thresholds. Conflicting strong opinions
// and knife-edge ties resolve to needs_revision before any threshold check,
// so the engine never auto-approves or auto-rejects a contested submission.
func (uc ReviewUseCase) resolveStatus(
	current entities.SubmissionStatus,
	summary entities.ConsensusSummary,
	reviews []entities.Review,
) entities.SubmissionStatus {
	if summary.ReviewCount == 0 {
		return current
	}

	strongAccept, strongReject := false, false
	for _, review := range reviews {
		if review.Superseded {
			continue
		}
		if review.WeightedScore >= uc.Policy.StrongOpinionThreshold {
			strongAccept = true
		}
		if review.WeightedScore <= -uc.Policy.StrongOpinionThreshold {
			strongReject = true
		}
	}
	if strongAccept && strongReject {
		return entities.SubmissionStatusNeedsRevision
	}

	if summary.ReviewCount >= uc.Policy.MinReviews {
		if summary.WeightedReviewScore >= uc.Policy.ApproveThreshold {
			return entities.SubmissionStatusApproved
		}
		if summary.WeightedReviewScore <= uc.Policy.RejectThreshold {
			return entities.SubmissionStatusRejected
		}
	}
	return entities.SubmissionStatusInReview
}

// stampTransition maintains the approval/rejection metadata through status
// changes, clearing stale stamps when an outcome is withdrawn.
func (uc ReviewUseCase) stampTransition(
	submission *entities.Submission,
	previous entities.SubmissionStatus,
	reviews []entities.Review,
	now time.Time,
) {
	if submission.Status == previous {
		return
	}
	switch submission.Status {
	case entities.SubmissionStatusApproved:
		approvedAt := now
		submission.ApprovedAt = &approvedAt
		submission.ApprovedBy = heaviestAccepter(reviews)
		submission.RejectionReason = ""
	case entities.SubmissionStatusRejected:
		submission.ApprovedAt = nil
		submission.ApprovedBy = ""
		submission.RejectionReason = rejectionReason(reviews)
	default:
		submission.ApprovedAt = nil
		submission.ApprovedBy = ""
		submission.RejectionReason = ""
	}
}

func (uc ReviewUseCase) onStatusChanged(
	ctx context.Context,
	submission entities.Submission,
	previous entities.SubmissionStatus,
	summary entities.ConsensusSummary,
	reviews []entities.Review,
	now time.Time,
) error {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("submission status changed",
		"event", "submission_status_changed",
		"module", "translation-quality/review-engine",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"from", string(previous),
		"to", string(submission.Status),
		"weighted_review_score", submission.WeightedReviewScore,
		"review_count", submission.ReviewCount,
	)

	if submission.Resolved() {
		if err := uc.settleReputation(ctx, submission, summary, reviews, now); err != nil {
			return err
		}
	}
	if err := uc.adjustSubmitterCounters(ctx, submission, previous, now); err != nil {
		return err
	}
	return uc.appendEvent(ctx, eventSubmissionStatusChanged, submission.SubmissionID, now, map[string]any{
		"submission_id":         submission.SubmissionID,
		"submitter_id":          submission.SubmitterID,
		"from":                  string(previous),
		"to":                    string(submission.Status),
		"weighted_review_score": submission.WeightedReviewScore,
		"review_count":          submission.ReviewCount,
	})
}

// settleReputation walks the contributing reviews and applies the ELO update
// for every review not yet settled against the current consensus. Re-running
// with an unchanged consensus is a no-op, so partial recomputation after a
// late review only processes the delta.
//
// needs_revision is a non-terminal outcome and moves no reputation; contested
// submissions settle once a fresh cycle reaches approved or rejected.
func (uc ReviewUseCase) settleReputation(
	ctx context.Context,
	submission entities.Submission,
	summary entities.ConsensusSummary,
	reviews []entities.Review,
	now time.Time,
) error {
	if submission.Status != entities.SubmissionStatusApproved &&
		submission.Status != entities.SubmissionStatusRejected {
		return nil
	}

	magnitude := uc.Policy.ConsensusMagnitude(summary.WeightedReviewScore, summary.TotalWeight)
	for _, review := range reviews {
		if review.Superseded || review.SettledConsensus == submission.Status {
			continue
		}
		agreed, reviewMagnitude := agreementOutcome(uc.Policy, review.Action, submission.Status, magnitude)
		if err := uc.applyReputationUpdate(ctx, review.ReviewerID, agreed, reviewMagnitude, now); err != nil {
			return err
		}
		review.SettledConsensus = submission.Status
		review.UpdatedAt = now
		if err := uc.Reviews.SaveReview(ctx, review); err != nil {
			return err
		}
	}
	return nil
}

// agreementOutcome maps a review decision against the resolved consensus.
// accept matches approved and reject matches rejected; suggest_edit is
// partial agreement at a reduced magnitude.
func agreementOutcome(
	policy scoring.Policy,
	action entities.ReviewAction,
	status entities.SubmissionStatus,
	magnitude float64,
) (bool, float64) {
	switch action {
	case entities.ReviewActionSuggestEdit:
		return true, magnitude * policy.SuggestEditSettleFactor
	case entities.ReviewActionAccept:
		return status == entities.SubmissionStatusApproved, magnitude
	case entities.ReviewActionReject:
		return status == entities.SubmissionStatusRejected, magnitude
	default:
		return false, 0
	}
}

func (uc ReviewUseCase) applyReputationUpdate(
	ctx context.Context,
	userID string,
	agreed bool,
	magnitude float64,
	now time.Time,
) error {
	logger := application.ResolveLogger(uc.Logger)
	unlock := uc.lock("user:" + userID)
	defer unlock()

	reputation, err := uc.ensureReputation(ctx, userID, now)
	if err != nil {
		return err
	}

	previousRank := reputation.Rank
	reputation.ReputationScore = uc.Policy.NextScore(
		reputation.ReputationScore,
		reputation.Contributions(),
		agreed,
		magnitude,
	)
	reputation.ReviewWeight = uc.Policy.ReviewWeight(reputation.ReputationScore)
	reputation.Rank, reputation.RankLevel = scoring.RankFor(reputation.ReputationScore)
	if agreed {
		reputation.ReviewsUpvoted++
	} else {
		reputation.ReviewsDownvoted++
	}
	touch := now.UTC()
	reputation.LastContributionAt = &touch
	reputation.UpdatedAt = now
	if err := uc.Reputations.SaveReputation(ctx, reputation); err != nil {
		return err
	}

	if reputation.Rank != previousRank {
		logger.Info("contributor rank changed",
			"event", "reputation_rank_changed",
			"module", "translation-quality/review-engine",
			"layer", "application",
			"user_id", userID,
			"from", string(previousRank),
			"to", string(reputation.Rank),
			"reputation_score", reputation.ReputationScore,
		)
		if err := uc.appendEvent(ctx, eventReputationRankChanged, userID, now, map[string]any{
			"user_id":          userID,
			"from":             string(previousRank),
			"to":               string(reputation.Rank),
			"rank_level":       reputation.RankLevel,
			"reputation_score": reputation.ReputationScore,
			"review_weight":    reputation.ReviewWeight,
		}); err != nil {
			return err
		}
	}
	return nil
}

// adjustSubmitterCounters keeps the submitter's accepted/rejected tallies and
// accuracy rate aligned with the submission's terminal outcome, including a
// later flip between approved and rejected.
func (uc ReviewUseCase) adjustSubmitterCounters(
	ctx context.Context,
	submission entities.Submission,
	previous entities.SubmissionStatus,
	now time.Time,
) error {
	deltaAccepted, deltaRejected := 0, 0
	switch previous {
	case entities.SubmissionStatusApproved:
		deltaAccepted--
	case entities.SubmissionStatusRejected:
		deltaRejected--
	}
	switch submission.Status {
	case entities.SubmissionStatusApproved:
		deltaAccepted++
	case entities.SubmissionStatusRejected:
		deltaRejected++
	}
	if deltaAccepted == 0 && deltaRejected == 0 {
		return nil
	}

	unlock := uc.lock("user:" + submission.SubmitterID)
	defer unlock()

	reputation, err := uc.ensureReputation(ctx, submission.SubmitterID, now)
	if err != nil {
		return err
	}
	reputation.TranslationsAccepted += deltaAccepted
	reputation.TranslationsRejected += deltaRejected
	if reputation.TranslationsAccepted < 0 {
		reputation.TranslationsAccepted = 0
	}
	if reputation.TranslationsRejected < 0 {
		reputation.TranslationsRejected = 0
	}
	if graded := reputation.TranslationsAccepted + reputation.TranslationsRejected; graded > 0 {
		reputation.AccuracyRate = float64(reputation.TranslationsAccepted) / float64(graded)
	} else {
		reputation.AccuracyRate = 0
	}
	reputation.UpdatedAt = now
	return uc.Reputations.SaveReputation(ctx, reputation)
}

// refreshAgreementCounts recomputes, for every current review, how many other
// current reviews share or oppose its decision. suggest_edit counts toward
// neither side.
func (uc ReviewUseCase) refreshAgreementCounts(
	ctx context.Context,
	reviews []entities.Review,
	now time.Time,
) error {
	accepts, rejects := 0, 0
	for _, review := range reviews {
		if review.Superseded {
			continue
		}
		switch review.Action {
		case entities.ReviewActionAccept:
			accepts++
		case entities.ReviewActionReject:
			rejects++
		}
	}
	for i := range reviews {
		if reviews[i].Superseded {
			continue
		}
		var agree, disagree int
		switch reviews[i].Action {
		case entities.ReviewActionAccept:
			agree, disagree = accepts-1, rejects
		case entities.ReviewActionReject:
			agree, disagree = rejects-1, accepts
		default:
			agree, disagree = 0, 0
		}
		if agree == reviews[i].AgreementVotes && disagree == reviews[i].DisagreementVotes {
			continue
		}
		reviews[i].AgreementVotes = agree
		reviews[i].DisagreementVotes = disagree
		reviews[i].UpdatedAt = now
		if err := uc.Reviews.SaveReview(ctx, reviews[i]); err != nil {
			return err
		}
	}
	return nil
}

// reviewerSnapshot reads the reviewer's live reputation for the immutable
// ledger snapshot, lazily creating the baseline record.
func (uc ReviewUseCase) reviewerSnapshot(
	ctx context.Context,
	reviewerID string,
	now time.Time,
) (entities.Reputation, error) {
	unlock := uc.lock("user:" + reviewerID)
	defer unlock()

	return uc.ensureReputation(ctx, reviewerID, now)
}

// countReviewSubmitted records the contribution once the ledger row exists.
func (uc ReviewUseCase) countReviewSubmitted(ctx context.Context, userID string, now time.Time) error {
	unlock := uc.lock("user:" + userID)
	defer unlock()

	reputation, err := uc.ensureReputation(ctx, userID, now)
	if err != nil {
		return err
	}
	reputation.ReviewsSubmitted++
	touch := now.UTC()
	reputation.LastContributionAt = &touch
	reputation.UpdatedAt = now
	return uc.Reputations.SaveReputation(ctx, reputation)
}

func (uc ReviewUseCase) countTranslationSubmitted(ctx context.Context, userID string, now time.Time) error {
	unlock := uc.lock("user:" + userID)
	defer unlock()

	reputation, err := uc.ensureReputation(ctx, userID, now)
	if err != nil {
		return err
	}
	reputation.TranslationsSubmitted++
	touch := now.UTC()
	reputation.LastContributionAt = &touch
	reputation.UpdatedAt = now
	return uc.Reputations.SaveReputation(ctx, reputation)
}

// ensureReputation self-heals a missing record by lazily creating the
// baseline entry instead of failing the caller.
func (uc ReviewUseCase) ensureReputation(
	ctx context.Context,
	userID string,
	now time.Time,
) (entities.Reputation, error) {
	reputation, found, err := uc.Reputations.GetReputation(ctx, userID)
	if err != nil && !errors.Is(err, domainerrors.ErrReputationNotFound) {
		return entities.Reputation{}, err
	}
	if !found || errors.Is(err, domainerrors.ErrReputationNotFound) {
		reputation = uc.Policy.NewBaselineReputation(userID, now)
		if err := uc.Reputations.SaveReputation(ctx, reputation); err != nil {
			return entities.Reputation{}, err
		}
	}
	return reputation, nil
}

func (uc ReviewUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newReviewEnvelope(eventID, eventType, partitionKey, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ReviewUseCase) lock(key string) func() {
	if uc.Locks == nil {
		return func() {}
	}
	return uc.Locks.Lock(key)
}

func (uc ReviewUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func validateReviewInput(
	submissionID string,
	reviewerID string,
	action entities.ReviewAction,
	rating int,
) error {
	if submissionID == "" || reviewerID == "" || !action.Valid() {
		return domainerrors.ErrInvalidReviewInput
	}
	if rating < 0 || rating > 5 {
		return domainerrors.ErrInvalidRatingRange
	}
	return nil
}

func summarize(
	submissionID string,
	status entities.SubmissionStatus,
	reviews []entities.Review,
) entities.ConsensusSummary {
	summary := entities.ConsensusSummary{
		SubmissionID: submissionID,
		Status:       status,
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
	return summary
}

func heaviestAccepter(reviews []entities.Review) string {
	best := ""
	bestWeight := 0.0
	for _, review := range reviews {
		if review.Superseded || review.Action != entities.ReviewActionAccept {
			continue
		}
		if review.ReviewWeight > bestWeight {
			best = review.ReviewerID
			bestWeight = review.ReviewWeight
		}
	}
	return best
}

func rejectionReason(reviews []entities.Review) string {
	for _, review := range reviews {
		if review.Superseded || review.Action != entities.ReviewActionReject {
			continue
		}
		if feedback := strings.TrimSpace(review.Feedback); feedback != "" {
			return feedback
		}
	}
	return "rejected by weighted review consensus"
}
