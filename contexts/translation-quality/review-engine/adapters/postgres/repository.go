package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/review-engine/domain/errors"
	"crowdlingo/contexts/translation-quality/review-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveReview(ctx context.Context, review entities.Review) error {
	row, err := reviewModelFromEntity(review)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"submission_id":       row.SubmissionID,
			"reviewer_id":         row.ReviewerID,
			"review_action":       row.ReviewAction,
			"quality_rating":      row.QualityRating,
			"feedback":            row.Feedback,
			"suggested_edit":      row.SuggestedEdit,
			"improvement_notes":   row.ImprovementNotes,
			"reviewer_reputation": row.ReviewerReputation,
			"review_weight":       row.ReviewWeight,
			"weighted_score":      row.WeightedScore,
			"agreement_votes":     row.AgreementVotes,
			"disagreement_votes":  row.DisagreementVotes,
			"superseded":          row.Superseded,
			"settled_consensus":   row.SettledConsensus,
			"updated_at":          row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrDuplicateReview
		}
		return r.logError("review_repo_save_review_failed", create.Error,
			"review_id", strings.TrimSpace(review.ReviewID),
			"submission_id", strings.TrimSpace(review.SubmissionID),
			"reviewer_id", strings.TrimSpace(review.ReviewerID),
		)
	}
	return nil
}

func (r *Repository) GetReview(ctx context.Context, reviewID string) (entities.Review, error) {
	var row reviewModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(reviewID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Review{}, domainerrors.ErrReviewNotFound
		}
		return entities.Review{}, r.logError("review_repo_get_review_failed", err, "review_id", strings.TrimSpace(reviewID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetReviewByIdentity(
	ctx context.Context,
	submissionID string,
	reviewerID string,
) (entities.Review, bool, error) {
	var row reviewModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Where("reviewer_id = ?", strings.TrimSpace(reviewerID)).
		Where("superseded = ?", false).
		Order("updated_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Review{}, false, nil
		}
		return entities.Review{}, false, r.logError("review_repo_get_review_by_identity_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
			"reviewer_id", strings.TrimSpace(reviewerID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListReviewsBySubmission(ctx context.Context, submissionID string) ([]entities.Review, error) {
	var rows []reviewModel
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Order("reviewed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_reviews_by_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return toReviewEntities(rows), nil
}

func (r *Repository) ListReviewsByReviewer(ctx context.Context, reviewerID string) ([]entities.Review, error) {
	var rows []reviewModel
	if err := r.db.WithContext(ctx).
		Where("reviewer_id = ?", strings.TrimSpace(reviewerID)).
		Order("reviewed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_reviews_by_reviewer_failed", err,
			"reviewer_id", strings.TrimSpace(reviewerID),
		)
	}
	return toReviewEntities(rows), nil
}

func (r *Repository) SupersedeReviewsBySubmission(
	ctx context.Context,
	submissionID string,
	updatedAt time.Time,
) ([]entities.Review, error) {
	submissionID = strings.TrimSpace(submissionID)
	update := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("submission_id = ?", submissionID).
		Where("superseded = ?", false).
		Updates(map[string]any{
			"superseded": true,
			"updated_at": updatedAt.UTC(),
		})
	if update.Error != nil {
		return nil, r.logError("review_repo_supersede_reviews_failed", update.Error,
			"submission_id", submissionID,
		)
	}

	var rows []reviewModel
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Where("superseded = ?", true).
		Where("updated_at = ?", updatedAt.UTC()).
		Order("reviewed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_superseded_reviews_failed", err,
			"submission_id", submissionID,
		)
	}
	return toReviewEntities(rows), nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, r.logError("review_repo_get_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveSubmission(ctx context.Context, submission entities.Submission) error {
	row := submissionModelFromEntity(submission)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"submitter_id":     row.SubmitterID,
			"source_text":      row.SourceText,
			"target_text":      row.TargetText,
			"source_language":  row.SourceLanguage,
			"target_language":  row.TargetLanguage,
			"domain":           row.Domain,
			"difficulty":       row.Difficulty,
			"status":           row.Status,
			"review_count":     row.ReviewCount,
			"weighted_score":   row.WeightedScore,
			"approved_at":      row.ApprovedAt,
			"approved_by":      row.ApprovedBy,
			"rejection_reason": row.RejectionReason,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("review_repo_save_submission_failed", create.Error,
			"submission_id", strings.TrimSpace(submission.SubmissionID),
		)
	}
	return nil
}

// SaveAggregate is a compare-and-swap on the submission's aggregate fields:
// the row is updated only while aggregate_version still matches, and the
// version is bumped in the same statement.
func (r *Repository) SaveAggregate(
	ctx context.Context,
	submission entities.Submission,
	expectedVersion int64,
) error {
	row := submissionModelFromEntity(submission)
	update := r.db.WithContext(ctx).Model(&submissionModel{}).
		Where("id = ?", row.ID).
		Where("aggregate_version = ?", expectedVersion).
		Updates(map[string]any{
			"status":            row.Status,
			"review_count":      row.ReviewCount,
			"weighted_score":    row.WeightedScore,
			"aggregate_version": expectedVersion + 1,
			"approved_at":       row.ApprovedAt,
			"approved_by":       row.ApprovedBy,
			"rejection_reason":  row.RejectionReason,
			"updated_at":        row.UpdatedAt,
		})
	if update.Error != nil {
		return r.logError("review_repo_save_aggregate_failed", update.Error,
			"submission_id", row.ID,
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrAggregationConflict
	}
	return nil
}

func (r *Repository) GetReputation(ctx context.Context, userID string) (entities.Reputation, bool, error) {
	var row reputationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Reputation{}, false, nil
		}
		return entities.Reputation{}, false, r.logError("review_repo_get_reputation_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveReputation(ctx context.Context, reputation entities.Reputation) error {
	row := reputationModelFromEntity(reputation)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"translations_submitted": row.TranslationsSubmitted,
			"translations_accepted":  row.TranslationsAccepted,
			"translations_rejected":  row.TranslationsRejected,
			"reviews_submitted":      row.ReviewsSubmitted,
			"reviews_upvoted":        row.ReviewsUpvoted,
			"reviews_downvoted":      row.ReviewsDownvoted,
			"reputation_score":       row.ReputationScore,
			"review_weight":          row.ReviewWeight,
			"accuracy_rate":          row.AccuracyRate,
			"rank":                   row.Rank,
			"rank_level":             row.RankLevel,
			"first_contribution_at":  row.FirstContributionAt,
			"last_contribution_at":   row.LastContributionAt,
			"updated_at":             row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("review_repo_save_reputation_failed", create.Error,
			"user_id", strings.TrimSpace(reputation.UserID),
		)
	}
	return nil
}

func (r *Repository) ListReputations(ctx context.Context) ([]entities.Reputation, error) {
	var rows []reputationModel
	if err := r.db.WithContext(ctx).
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_reputations_failed", err)
	}
	items := make([]entities.Reputation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("review_repo_append_outbox_failed", create.Error,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	published := publishedAt.UTC()
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &published,
		})
	if update.Error != nil {
		return r.logError("review_repo_mark_outbox_published_failed", update.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("review_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		First(&existing).Error; err != nil {
		return false, r.logError("review_repo_reserve_event_lookup_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "translation-quality/review-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("review repository operation failed", fields...)
	return err
}

type reviewModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	SubmissionID       string    `gorm:"column:submission_id"`
	ReviewerID         string    `gorm:"column:reviewer_id"`
	ReviewAction       string    `gorm:"column:review_action"`
	QualityRating      int       `gorm:"column:quality_rating"`
	Feedback           string    `gorm:"column:feedback"`
	SuggestedEdit      string    `gorm:"column:suggested_edit"`
	ImprovementNotes   []byte    `gorm:"column:improvement_notes"`
	ReviewerReputation float64   `gorm:"column:reviewer_reputation"`
	ReviewWeight       float64   `gorm:"column:review_weight"`
	WeightedScore      float64   `gorm:"column:weighted_score"`
	AgreementVotes     int       `gorm:"column:agreement_votes"`
	DisagreementVotes  int       `gorm:"column:disagreement_votes"`
	Superseded         bool      `gorm:"column:superseded"`
	SettledConsensus   string    `gorm:"column:settled_consensus"`
	ReviewedAt         time.Time `gorm:"column:reviewed_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string {
	return "translation_reviews"
}

func reviewModelFromEntity(review entities.Review) (reviewModel, error) {
	notes, err := json.Marshal(review.Notes)
	if err != nil {
		return reviewModel{}, err
	}
	row := reviewModel{
		ID:                 strings.TrimSpace(review.ReviewID),
		SubmissionID:       strings.TrimSpace(review.SubmissionID),
		ReviewerID:         strings.TrimSpace(review.ReviewerID),
		ReviewAction:       string(review.Action),
		QualityRating:      review.QualityRating,
		Feedback:           strings.TrimSpace(review.Feedback),
		SuggestedEdit:      strings.TrimSpace(review.SuggestedEdit),
		ImprovementNotes:   notes,
		ReviewerReputation: review.ReviewerReputation,
		ReviewWeight:       review.ReviewWeight,
		WeightedScore:      review.WeightedScore,
		AgreementVotes:     review.AgreementVotes,
		DisagreementVotes:  review.DisagreementVotes,
		Superseded:         review.Superseded,
		SettledConsensus:   string(review.SettledConsensus),
		ReviewedAt:         review.ReviewedAt.UTC(),
		UpdatedAt:          review.UpdatedAt.UTC(),
	}
	if row.ReviewedAt.IsZero() {
		row.ReviewedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.ReviewedAt
	}
	return row, nil
}

func (m reviewModel) toEntity() entities.Review {
	var notes entities.ImprovementNotes
	if len(m.ImprovementNotes) > 0 {
		// Corrupt notes degrade to an empty block rather than failing reads.
		_ = json.Unmarshal(m.ImprovementNotes, &notes)
	}
	return entities.Review{
		ReviewID:           m.ID,
		SubmissionID:       m.SubmissionID,
		ReviewerID:         m.ReviewerID,
		Action:             entities.ReviewAction(m.ReviewAction),
		QualityRating:      m.QualityRating,
		Feedback:           m.Feedback,
		SuggestedEdit:      m.SuggestedEdit,
		Notes:              notes,
		ReviewerReputation: m.ReviewerReputation,
		ReviewWeight:       m.ReviewWeight,
		WeightedScore:      m.WeightedScore,
		AgreementVotes:     m.AgreementVotes,
		DisagreementVotes:  m.DisagreementVotes,
		Superseded:         m.Superseded,
		SettledConsensus:   entities.SubmissionStatus(m.SettledConsensus),
		ReviewedAt:         m.ReviewedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

type submissionModel struct {
	ID               string     `gorm:"column:id;primaryKey"`
	SubmitterID      string     `gorm:"column:submitter_id"`
	SourceText       string     `gorm:"column:source_text"`
	TargetText       string     `gorm:"column:target_text"`
	SourceLanguage   string     `gorm:"column:source_language"`
	TargetLanguage   string     `gorm:"column:target_language"`
	Domain           string     `gorm:"column:domain"`
	Difficulty       string     `gorm:"column:difficulty"`
	Status           string     `gorm:"column:status"`
	ReviewCount      int        `gorm:"column:review_count"`
	WeightedScore    float64    `gorm:"column:weighted_score"`
	AggregateVersion int64      `gorm:"column:aggregate_version"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	ApprovedBy       string     `gorm:"column:approved_by"`
	RejectionReason  string     `gorm:"column:rejection_reason"`
	SubmittedAt      time.Time  `gorm:"column:submitted_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string {
	return "translation_submissions"
}

func submissionModelFromEntity(submission entities.Submission) submissionModel {
	row := submissionModel{
		ID:               strings.TrimSpace(submission.SubmissionID),
		SubmitterID:      strings.TrimSpace(submission.SubmitterID),
		SourceText:       submission.SourceText,
		TargetText:       submission.TargetText,
		SourceLanguage:   strings.TrimSpace(submission.SourceLanguage),
		TargetLanguage:   strings.TrimSpace(submission.TargetLanguage),
		Domain:           strings.TrimSpace(submission.Domain),
		Difficulty:       strings.TrimSpace(submission.Difficulty),
		Status:           string(submission.Status),
		ReviewCount:      submission.ReviewCount,
		WeightedScore:    submission.WeightedReviewScore,
		AggregateVersion: submission.AggregateVersion,
		ApprovedAt:       normalizeOptionalTime(submission.ApprovedAt),
		ApprovedBy:       strings.TrimSpace(submission.ApprovedBy),
		RejectionReason:  strings.TrimSpace(submission.RejectionReason),
		SubmittedAt:      submission.SubmittedAt.UTC(),
		UpdatedAt:        submission.UpdatedAt.UTC(),
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.SubmittedAt
	}
	return row
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID:        m.ID,
		SubmitterID:         m.SubmitterID,
		SourceText:          m.SourceText,
		TargetText:          m.TargetText,
		SourceLanguage:      m.SourceLanguage,
		TargetLanguage:      m.TargetLanguage,
		Domain:              m.Domain,
		Difficulty:          m.Difficulty,
		Status:              entities.SubmissionStatus(m.Status),
		ReviewCount:         m.ReviewCount,
		WeightedReviewScore: m.WeightedScore,
		AggregateVersion:    m.AggregateVersion,
		ApprovedAt:          normalizeOptionalTime(m.ApprovedAt),
		ApprovedBy:          m.ApprovedBy,
		RejectionReason:     m.RejectionReason,
		SubmittedAt:         m.SubmittedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

type reputationModel struct {
	UserID                string     `gorm:"column:user_id;primaryKey"`
	TranslationsSubmitted int        `gorm:"column:translations_submitted"`
	TranslationsAccepted  int        `gorm:"column:translations_accepted"`
	TranslationsRejected  int        `gorm:"column:translations_rejected"`
	ReviewsSubmitted      int        `gorm:"column:reviews_submitted"`
	ReviewsUpvoted        int        `gorm:"column:reviews_upvoted"`
	ReviewsDownvoted      int        `gorm:"column:reviews_downvoted"`
	ReputationScore       float64    `gorm:"column:reputation_score"`
	ReviewWeight          float64    `gorm:"column:review_weight"`
	AccuracyRate          float64    `gorm:"column:accuracy_rate"`
	Rank                  string     `gorm:"column:rank"`
	RankLevel             int        `gorm:"column:rank_level"`
	FirstContributionAt   *time.Time `gorm:"column:first_contribution_at"`
	LastContributionAt    *time.Time `gorm:"column:last_contribution_at"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

func (reputationModel) TableName() string {
	return "user_reputation"
}

func reputationModelFromEntity(reputation entities.Reputation) reputationModel {
	row := reputationModel{
		UserID:                strings.TrimSpace(reputation.UserID),
		TranslationsSubmitted: reputation.TranslationsSubmitted,
		TranslationsAccepted:  reputation.TranslationsAccepted,
		TranslationsRejected:  reputation.TranslationsRejected,
		ReviewsSubmitted:      reputation.ReviewsSubmitted,
		ReviewsUpvoted:        reputation.ReviewsUpvoted,
		ReviewsDownvoted:      reputation.ReviewsDownvoted,
		ReputationScore:       reputation.ReputationScore,
		ReviewWeight:          reputation.ReviewWeight,
		AccuracyRate:          reputation.AccuracyRate,
		Rank:                  string(reputation.Rank),
		RankLevel:             reputation.RankLevel,
		FirstContributionAt:   normalizeOptionalTime(reputation.FirstContributionAt),
		LastContributionAt:    normalizeOptionalTime(reputation.LastContributionAt),
		CreatedAt:             reputation.CreatedAt.UTC(),
		UpdatedAt:             reputation.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m reputationModel) toEntity() entities.Reputation {
	return entities.Reputation{
		UserID:                m.UserID,
		TranslationsSubmitted: m.TranslationsSubmitted,
		TranslationsAccepted:  m.TranslationsAccepted,
		TranslationsRejected:  m.TranslationsRejected,
		ReviewsSubmitted:      m.ReviewsSubmitted,
		ReviewsUpvoted:        m.ReviewsUpvoted,
		ReviewsDownvoted:      m.ReviewsDownvoted,
		ReputationScore:       m.ReputationScore,
		ReviewWeight:          m.ReviewWeight,
		AccuracyRate:          m.AccuracyRate,
		Rank:                  entities.Rank(m.Rank),
		RankLevel:             m.RankLevel,
		FirstContributionAt:   normalizeOptionalTime(m.FirstContributionAt),
		LastContributionAt:    normalizeOptionalTime(m.LastContributionAt),
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "review_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "review_event_dedup"
}

func toReviewEntities(rows []reviewModel) []entities.Review {
	items := make([]entities.Review, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.ReviewRepository     = (*Repository)(nil)
	_ ports.SubmissionRepository = (*Repository)(nil)
	_ ports.ReputationRepository = (*Repository)(nil)
	_ ports.OutboxWriter         = (*Repository)(nil)
	_ ports.OutboxRepository     = (*Repository)(nil)
	_ ports.EventDedupStore      = (*Repository)(nil)
)
