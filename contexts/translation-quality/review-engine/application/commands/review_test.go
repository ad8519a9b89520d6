package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	reviewengine "crowdlingo/contexts/translation-quality/review-engine"
	"crowdlingo/contexts/translation-quality/review-engine/adapters/memory"
	"crowdlingo/contexts/translation-quality/review-engine/application/commands"
	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/review-engine/domain/errors"
	"crowdlingo/contexts/translation-quality/review-engine/domain/scoring"
	"crowdlingo/contexts/translation-quality/review-engine/ports"
)

func newTestModule(t *testing.T) reviewengine.Module {
	t.Helper()
	return reviewengine.NewInMemoryModule(nil, nil)
}

func registerSubmission(t *testing.T, module reviewengine.Module, submissionID string, submitterID string) {
	t.Helper()
	_, err := module.Reviews.RegisterSubmission(context.Background(), commands.RegisterSubmissionCommand{
		SubmissionID:   submissionID,
		SubmitterID:    submitterID,
		SourceText:     "Good morning",
		TargetText:     "Buenos dias",
		SourceLanguage: "en",
		TargetLanguage: "es",
		Domain:         "greetings",
	})
	if err != nil {
		t.Fatalf("register submission: %v", err)
	}
}

func seedReputation(t *testing.T, module reviewengine.Module, userID string, score float64) {
	t.Helper()
	policy := scoring.DefaultPolicy()
	reputation := policy.NewBaselineReputation(userID, time.Now().UTC())
	reputation.ReputationScore = score
	reputation.ReviewWeight = policy.ReviewWeight(score)
	reputation.Rank, reputation.RankLevel = scoring.RankFor(score)
	if err := module.Store.SaveReputation(context.Background(), reputation); err != nil {
		t.Fatalf("seed reputation: %v", err)
	}
}

func submitReview(
	t *testing.T,
	module reviewengine.Module,
	submissionID string,
	reviewerID string,
	action entities.ReviewAction,
	rating int,
) commands.ReviewResult {
	t.Helper()
	result, err := module.Reviews.SubmitReview(context.Background(), commands.SubmitReviewCommand{
		SubmissionID:  submissionID,
		ReviewerID:    reviewerID,
		Action:        action,
		QualityRating: rating,
	})
	if err != nil {
		t.Fatalf("submit review %s/%s: %v", submissionID, reviewerID, err)
	}
	return result
}

func TestWeightedMajorityApprovesOverWeakReject(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionAccept, 5)
	result := submitReview(t, module, "sub-1", "novice-c", entities.ReviewActionReject, 0)

	if result.Status != entities.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", result.Status)
	}
	if result.Consensus.ReviewCount != 3 {
		t.Fatalf("expected 3 reviews, got %d", result.Consensus.ReviewCount)
	}
	// 2.0 + 2.0 - 1.0 from two weight-2 accepts and one weight-1 reject.
	if diff := result.Consensus.WeightedReviewScore - 3.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected weighted score 3.0, got %f", result.Consensus.WeightedReviewScore)
	}

	submission, err := module.Queries.GetSubmission(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if submission.ApprovedAt == nil {
		t.Fatalf("approved submission must carry an approval timestamp")
	}
	if submission.ApprovedBy == "" {
		t.Fatalf("approved submission must record the leading accepter")
	}
}

func TestConflictingStrongOpinionsNeedRevision(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	result := submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionReject, 0)

	if result.Status != entities.SubmissionStatusNeedsRevision {
		t.Fatalf("expected needs_revision, got %s", result.Status)
	}
}

func TestSelfReviewRejected(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")

	_, err := module.Reviews.SubmitReview(context.Background(), commands.SubmitReviewCommand{
		SubmissionID: "sub-1",
		ReviewerID:   "author",
		Action:       entities.ReviewActionAccept,
	})
	if !errors.Is(err, domainerrors.ErrSelfReviewNotAllowed) {
		t.Fatalf("expected ErrSelfReviewNotAllowed, got %v", err)
	}
}

func TestDuplicateReviewRejected(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")

	submitReview(t, module, "sub-1", "reviewer", entities.ReviewActionAccept, 4)
	_, err := module.Reviews.SubmitReview(context.Background(), commands.SubmitReviewCommand{
		SubmissionID: "sub-1",
		ReviewerID:   "reviewer",
		Action:       entities.ReviewActionReject,
	})
	if !errors.Is(err, domainerrors.ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
}

func TestRatingOutOfRangeRejected(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")

	_, err := module.Reviews.SubmitReview(context.Background(), commands.SubmitReviewCommand{
		SubmissionID:  "sub-1",
		ReviewerID:    "reviewer",
		Action:        entities.ReviewActionAccept,
		QualityRating: 6,
	})
	if !errors.Is(err, domainerrors.ErrInvalidRatingRange) {
		t.Fatalf("expected ErrInvalidRatingRange, got %v", err)
	}
}

func TestResolvedSubmissionRejectsNewReviews(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	result := submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionReject, 0)
	if result.Status != entities.SubmissionStatusNeedsRevision {
		t.Fatalf("expected needs_revision, got %s", result.Status)
	}

	_, err := module.Reviews.SubmitReview(context.Background(), commands.SubmitReviewCommand{
		SubmissionID: "sub-1",
		ReviewerID:   "late-reviewer",
		Action:       entities.ReviewActionAccept,
	})
	if !errors.Is(err, domainerrors.ErrSubmissionNotReviewable) {
		t.Fatalf("expected ErrSubmissionNotReviewable, got %v", err)
	}
}

func TestConsensusSettlementMovesReputation(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)
	seedReputation(t, module, "dissenter", 100)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionAccept, 5)
	result := submitReview(t, module, "sub-1", "dissenter", entities.ReviewActionReject, 0)
	if result.Status != entities.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", result.Status)
	}

	ctx := context.Background()
	expertA, found, err := module.Store.GetReputation(ctx, "expert-a")
	if err != nil || !found {
		t.Fatalf("expert-a reputation missing: %v", err)
	}
	if expertA.ReputationScore <= 200 {
		t.Fatalf("agreeing reviewer must gain reputation, got %f", expertA.ReputationScore)
	}
	if expertA.ReviewsUpvoted != 1 {
		t.Fatalf("agreeing reviewer must record one upvoted review, got %d", expertA.ReviewsUpvoted)
	}

	dissenter, found, err := module.Store.GetReputation(ctx, "dissenter")
	if err != nil || !found {
		t.Fatalf("dissenter reputation missing: %v", err)
	}
	if dissenter.ReputationScore >= 100 {
		t.Fatalf("disagreeing reviewer must lose reputation, got %f", dissenter.ReputationScore)
	}
	if dissenter.ReviewsDownvoted != 1 {
		t.Fatalf("disagreeing reviewer must record one downvoted review, got %d", dissenter.ReviewsDownvoted)
	}

	author, found, err := module.Store.GetReputation(ctx, "author")
	if err != nil || !found {
		t.Fatalf("author reputation missing: %v", err)
	}
	if author.TranslationsAccepted != 1 {
		t.Fatalf("author must record one accepted translation, got %d", author.TranslationsAccepted)
	}
	if author.AccuracyRate != 1.0 {
		t.Fatalf("author accuracy must be 1.0, got %f", author.AccuracyRate)
	}
}

func TestSettlementIsIdempotentAcrossRecomputes(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionAccept, 5)
	submitReview(t, module, "sub-1", "bystander", entities.ReviewActionSuggestEdit, 0)

	ctx := context.Background()
	settled, found, err := module.Store.GetReputation(ctx, "expert-a")
	if err != nil || !found {
		t.Fatalf("expert-a reputation missing: %v", err)
	}

	// A forced recompute with an unchanged consensus must not re-score anyone.
	if _, err := module.Reviews.VerifyAggregate(ctx, "sub-1"); err != nil {
		t.Fatalf("verify aggregate: %v", err)
	}
	resettled, _, err := module.Store.GetReputation(ctx, "expert-a")
	if err != nil {
		t.Fatalf("expert-a reputation reread: %v", err)
	}
	if resettled.ReputationScore != settled.ReputationScore {
		t.Fatalf("recompute must be a reputation no-op: %f != %f",
			resettled.ReputationScore, settled.ReputationScore)
	}
}

func TestSnapshotSurvivesLaterReputationChange(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	registerSubmission(t, module, "sub-2", "author")
	seedReputation(t, module, "reviewer", 100)

	first := submitReview(t, module, "sub-1", "reviewer", entities.ReviewActionAccept, 5)
	if first.Review.ReviewWeight != 1.0 {
		t.Fatalf("expected snapshot weight 1.0, got %f", first.Review.ReviewWeight)
	}

	seedReputation(t, module, "reviewer", 300)
	second := submitReview(t, module, "sub-2", "reviewer", entities.ReviewActionAccept, 5)
	if second.Review.ReviewWeight != 3.0 {
		t.Fatalf("expected snapshot weight 3.0, got %f", second.Review.ReviewWeight)
	}

	original, err := module.Queries.GetReview(context.Background(), first.Review.ReviewID)
	if err != nil {
		t.Fatalf("get original review: %v", err)
	}
	if original.ReviewWeight != 1.0 {
		t.Fatalf("original snapshot must be immutable, got %f", original.ReviewWeight)
	}
}

func TestResubmissionSupersedesOldReviews(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	result := submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionReject, 0)
	if result.Status != entities.SubmissionStatusNeedsRevision {
		t.Fatalf("expected needs_revision, got %s", result.Status)
	}

	ctx := context.Background()
	submission, err := module.Reviews.ResubmitSubmission(ctx, commands.ResubmitSubmissionCommand{
		SubmissionID: "sub-1",
		SubmitterID:  "author",
		TargetText:   "Buenos dias, revisado",
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if submission.Status != entities.SubmissionStatusSubmitted {
		t.Fatalf("resubmitted submission must restart as submitted, got %s", submission.Status)
	}
	if submission.ReviewCount != 0 || submission.WeightedReviewScore != 0 {
		t.Fatalf("resubmitted aggregate must reset, got %d/%f",
			submission.ReviewCount, submission.WeightedReviewScore)
	}

	reviews, err := module.Queries.ListReviewsBySubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("superseded reviews must stay on the ledger, got %d", len(reviews))
	}
	for _, review := range reviews {
		if !review.Superseded {
			t.Fatalf("review %s must be superseded", review.ReviewID)
		}
	}

	// The prior reviewers may weigh in again on the revised text.
	fresh := submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 4)
	if fresh.Consensus.ReviewCount != 1 {
		t.Fatalf("fresh cycle must count only live reviews, got %d", fresh.Consensus.ReviewCount)
	}
}

func TestResubmissionOnlyFromNeedsRevision(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")

	_, err := module.Reviews.ResubmitSubmission(context.Background(), commands.ResubmitSubmissionCommand{
		SubmissionID: "sub-1",
		SubmitterID:  "author",
		TargetText:   "Buenos dias",
	})
	if !errors.Is(err, domainerrors.ErrResubmissionNotAllowed) {
		t.Fatalf("expected ErrResubmissionNotAllowed, got %v", err)
	}
}

func TestUpdateReviewCanFlipOutcome(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionAccept, 5)
	result := submitReview(t, module, "sub-1", "extra", entities.ReviewActionSuggestEdit, 0)
	if result.Status != entities.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", result.Status)
	}

	updated, err := module.Reviews.UpdateReview(context.Background(), commands.UpdateReviewCommand{
		SubmissionID: "sub-1",
		ReviewerID:   "expert-b",
		Action:       entities.ReviewActionReject,
	})
	if err != nil {
		t.Fatalf("update review: %v", err)
	}
	if updated.Status == entities.SubmissionStatusApproved {
		t.Fatalf("a reversed strong accept must withdraw the approval, got %s", updated.Status)
	}
}

func TestLazyReputationCreation(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")

	submitReview(t, module, "sub-1", "newcomer", entities.ReviewActionAccept, 4)

	reputation, found, err := module.Store.GetReputation(context.Background(), "newcomer")
	if err != nil || !found {
		t.Fatalf("newcomer reputation must be created lazily: %v", err)
	}
	if reputation.ReputationScore != 100 {
		t.Fatalf("newcomer must start at baseline, got %f", reputation.ReputationScore)
	}
	if reputation.ReviewsSubmitted != 1 {
		t.Fatalf("newcomer must record one submitted review, got %d", reputation.ReviewsSubmitted)
	}
}

func TestOutboxCarriesLifecycleEvents(t *testing.T) {
	module := newTestModule(t)
	registerSubmission(t, module, "sub-1", "author")
	seedReputation(t, module, "expert-a", 200)
	seedReputation(t, module, "expert-b", 200)

	submitReview(t, module, "sub-1", "expert-a", entities.ReviewActionAccept, 5)
	submitReview(t, module, "sub-1", "expert-b", entities.ReviewActionAccept, 5)
	submitReview(t, module, "sub-1", "extra", entities.ReviewActionAccept, 4)

	pending, err := module.Store.ListPendingOutbox(context.Background(), 100)
	if err != nil {
		t.Fatalf("list pending outbox: %v", err)
	}
	types := make(map[string]int)
	for _, row := range pending {
		types[row.EventType]++
	}
	if types["submission.registered"] != 1 {
		t.Fatalf("expected one submission.registered event, got %d", types["submission.registered"])
	}
	if types["review.submitted"] != 3 {
		t.Fatalf("expected three review.submitted events, got %d", types["review.submitted"])
	}
	if types["submission.status.changed"] == 0 {
		t.Fatalf("expected submission.status.changed events, got none")
	}
}

type flakyReviewLedger struct {
	ports.ReviewRepository
	refuseWrites bool
}

func (l *flakyReviewLedger) SaveReview(ctx context.Context, review entities.Review) error {
	if l.refuseWrites {
		return errors.New("ledger write refused")
	}
	return l.ReviewRepository.SaveReview(ctx, review)
}

func TestFailedReviewWriteLeavesCounterUntouched(t *testing.T) {
	store := memory.NewStore(nil)
	ledger := &flakyReviewLedger{ReviewRepository: store, refuseWrites: true}
	module := reviewengine.NewModule(reviewengine.Dependencies{
		Reviews:     ledger,
		Submissions: store,
		Reputations: store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Policy:      scoring.DefaultPolicy(),
	})
	registerSubmission(t, module, "sub-1", "author")

	_, err := module.Reviews.SubmitReview(context.Background(), commands.SubmitReviewCommand{
		SubmissionID:  "sub-1",
		ReviewerID:    "rev-1",
		Action:        entities.ReviewActionAccept,
		QualityRating: 4,
	})
	if err == nil {
		t.Fatal("expected refused ledger write to fail the submit")
	}

	reputation, found, err := store.GetReputation(context.Background(), "rev-1")
	if err != nil {
		t.Fatalf("get reputation: %v", err)
	}
	if found && reputation.ReviewsSubmitted != 0 {
		t.Fatalf("failed insert must not count a review, got %d", reputation.ReviewsSubmitted)
	}

	ledger.refuseWrites = false
	result, err := module.Reviews.SubmitReview(context.Background(), commands.SubmitReviewCommand{
		SubmissionID:  "sub-1",
		ReviewerID:    "rev-1",
		Action:        entities.ReviewActionAccept,
		QualityRating: 4,
	})
	if err != nil {
		t.Fatalf("retry after ledger recovery: %v", err)
	}
	if result.Review.ReviewID == "" {
		t.Fatal("expected recorded review on retry")
	}

	reputation, found, err = store.GetReputation(context.Background(), "rev-1")
	if err != nil || !found {
		t.Fatalf("reviewer reputation must exist after success: %v", err)
	}
	if reputation.ReviewsSubmitted != 1 {
		t.Fatalf("expected exactly one counted review, got %d", reputation.ReviewsSubmitted)
	}
}
