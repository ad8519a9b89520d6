package httpadapter

import (
	"context"
	"log/slog"

	"crowdlingo/contexts/translation-quality/review-engine/application/commands"
	"crowdlingo/contexts/translation-quality/review-engine/application/queries"
	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	httptransport "crowdlingo/contexts/translation-quality/review-engine/transport/http"
)

type Handler struct {
	Reviews commands.ReviewUseCase
	Queries queries.ReviewQueries
	Logger  *slog.Logger
}

func (h Handler) SubmitReviewHandler(
	ctx context.Context,
	reviewerID string,
	req httptransport.SubmitReviewRequest,
) (httptransport.ReviewResponse, error) {
	result, err := h.Reviews.SubmitReview(ctx, commands.SubmitReviewCommand{
		SubmissionID:  req.SubmissionID,
		ReviewerID:    reviewerID,
		Action:        entities.ReviewAction(req.Action),
		QualityRating: req.QualityRating,
		Feedback:      req.Feedback,
		SuggestedEdit: req.SuggestedEdit,
		Notes:         notesFromDTO(req.Notes),
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return reviewResponse(result.Review, string(result.Status)), nil
}

func (h Handler) UpdateReviewHandler(
	ctx context.Context,
	submissionID string,
	reviewerID string,
	req httptransport.UpdateReviewRequest,
) (httptransport.ReviewResponse, error) {
	result, err := h.Reviews.UpdateReview(ctx, commands.UpdateReviewCommand{
		SubmissionID:  submissionID,
		ReviewerID:    reviewerID,
		Action:        entities.ReviewAction(req.Action),
		QualityRating: req.QualityRating,
		Feedback:      req.Feedback,
		SuggestedEdit: req.SuggestedEdit,
		Notes:         notesFromDTO(req.Notes),
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return reviewResponse(result.Review, string(result.Status)), nil
}

func (h Handler) RegisterSubmissionHandler(
	ctx context.Context,
	submitterID string,
	req httptransport.RegisterSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Reviews.RegisterSubmission(ctx, commands.RegisterSubmissionCommand{
		SubmissionID:   req.SubmissionID,
		SubmitterID:    submitterID,
		SourceText:     req.SourceText,
		TargetText:     req.TargetText,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Domain:         req.Domain,
		Difficulty:     req.Difficulty,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return submissionResponse(submission), nil
}

func (h Handler) ResubmitSubmissionHandler(
	ctx context.Context,
	submissionID string,
	submitterID string,
	req httptransport.ResubmitSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Reviews.ResubmitSubmission(ctx, commands.ResubmitSubmissionCommand{
		SubmissionID: submissionID,
		SubmitterID:  submitterID,
		SourceText:   req.SourceText,
		TargetText:   req.TargetText,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return submissionResponse(submission), nil
}

func (h Handler) GetSubmissionHandler(ctx context.Context, submissionID string) (httptransport.SubmissionResponse, error) {
	submission, err := h.Queries.GetSubmission(ctx, submissionID)
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return submissionResponse(submission), nil
}

func (h Handler) GetConsensusHandler(ctx context.Context, submissionID string) (httptransport.ConsensusResponse, error) {
	summary, err := h.Queries.GetConsensus(ctx, submissionID)
	if err != nil {
		return httptransport.ConsensusResponse{}, err
	}
	return httptransport.ConsensusResponse{
		SubmissionID:        summary.SubmissionID,
		Status:              string(summary.Status),
		ReviewCount:         summary.ReviewCount,
		WeightedReviewScore: summary.WeightedReviewScore,
		Accepts:             summary.Accepts,
		Rejects:             summary.Rejects,
		SuggestedEdits:      summary.SuggestedEdits,
		TotalWeight:         summary.TotalWeight,
	}, nil
}

func (h Handler) SubmissionReviewsHandler(ctx context.Context, submissionID string) (httptransport.ReviewListResponse, error) {
	reviews, err := h.Queries.ListReviewsBySubmission(ctx, submissionID)
	if err != nil {
		return httptransport.ReviewListResponse{}, err
	}
	return httptransport.ReviewListResponse{Items: mapReviews(reviews)}, nil
}

func (h Handler) ReviewerReviewsHandler(ctx context.Context, reviewerID string) (httptransport.ReviewListResponse, error) {
	reviews, err := h.Queries.ListReviewsByReviewer(ctx, reviewerID)
	if err != nil {
		return httptransport.ReviewListResponse{}, err
	}
	return httptransport.ReviewListResponse{Items: mapReviews(reviews)}, nil
}

func notesFromDTO(dto httptransport.ImprovementNotesDTO) entities.ImprovementNotes {
	return entities.ImprovementNotes{
		Grammar:  dto.Grammar,
		Accuracy: dto.Accuracy,
		Fluency:  dto.Fluency,
		Cultural: dto.Cultural,
	}
}

func reviewResponse(review entities.Review, submissionStatus string) httptransport.ReviewResponse {
	return httptransport.ReviewResponse{
		ReviewID:      review.ReviewID,
		SubmissionID:  review.SubmissionID,
		ReviewerID:    review.ReviewerID,
		Action:        string(review.Action),
		QualityRating: review.QualityRating,
		Feedback:      review.Feedback,
		SuggestedEdit: review.SuggestedEdit,
		Notes: httptransport.ImprovementNotesDTO{
			Grammar:  review.Notes.Grammar,
			Accuracy: review.Notes.Accuracy,
			Fluency:  review.Notes.Fluency,
			Cultural: review.Notes.Cultural,
		},
		ReviewerReputation: review.ReviewerReputation,
		ReviewWeight:       review.ReviewWeight,
		WeightedScore:      review.WeightedScore,
		Superseded:         review.Superseded,
		SubmissionStatus:   submissionStatus,
	}
}

func submissionResponse(submission entities.Submission) httptransport.SubmissionResponse {
	return httptransport.SubmissionResponse{
		SubmissionID:        submission.SubmissionID,
		SubmitterID:         submission.SubmitterID,
		SourceText:          submission.SourceText,
		TargetText:          submission.TargetText,
		SourceLanguage:      submission.SourceLanguage,
		TargetLanguage:      submission.TargetLanguage,
		Domain:              submission.Domain,
		Difficulty:          submission.Difficulty,
		Status:              string(submission.Status),
		ReviewCount:         submission.ReviewCount,
		WeightedReviewScore: submission.WeightedReviewScore,
		ApprovedBy:          submission.ApprovedBy,
		RejectionReason:     submission.RejectionReason,
	}
}

func mapReviews(reviews []entities.Review) []httptransport.ReviewResponse {
	items := make([]httptransport.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, reviewResponse(review, ""))
	}
	return items
}
