package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/quality-gate/domain/errors"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"

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

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (ports.SubmissionProjection, error) {
	var row submissionProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SubmissionProjection{}, domainerrors.ErrSubmissionNotFound
		}
		return ports.SubmissionProjection{}, r.logError("quality_repo_get_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return ports.SubmissionProjection{
		SubmissionID:        row.ID,
		SubmitterID:         row.SubmitterID,
		SourceText:          row.SourceText,
		TargetText:          row.TargetText,
		SourceLanguage:      row.SourceLanguage,
		TargetLanguage:      row.TargetLanguage,
		Domain:              row.Domain,
		Difficulty:          row.Difficulty,
		Status:              row.Status,
		ReviewCount:         row.ReviewCount,
		WeightedReviewScore: row.WeightedScore,
	}, nil
}

func (r *Repository) GetSignals(ctx context.Context, submissionID string) (entities.QualitySignals, bool, error) {
	var row signalsModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.QualitySignals{}, false, nil
		}
		return entities.QualitySignals{}, false, r.logError("quality_repo_get_signals_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveSignals(ctx context.Context, signals entities.QualitySignals) error {
	row := signalsModelFromEntity(signals)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"contributor_id":     row.ContributorID,
			"completion_seconds": row.CompletionSeconds,
			"required_fields":    row.RequiredFields,
			"completed_fields":   row.CompletedFields,
			"has_location":       row.HasLocation,
			"latitude":           row.Latitude,
			"longitude":          row.Longitude,
			"accuracy_meters":    row.AccuracyMeters,
			"photo_count":        row.PhotoCount,
			"consistency_issues": row.ConsistencyIssues,
			"captured_at":        row.CapturedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("quality_repo_save_signals_failed", create.Error,
			"submission_id", strings.TrimSpace(signals.SubmissionID),
		)
	}
	return nil
}

func (r *Repository) CountDuplicateTargetText(
	ctx context.Context,
	contributorID string,
	targetText string,
	since time.Time,
) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("translation_submissions AS s").
		Joins("LEFT JOIN submission_signals AS g ON g.submission_id = s.id").
		Where("s.submitter_id = ?", strings.TrimSpace(contributorID)).
		Where("s.target_text = ?", targetText).
		Where("g.captured_at IS NULL OR g.captured_at >= ?", since.UTC()).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("quality_repo_count_duplicate_text_failed", err,
			"contributor_id", strings.TrimSpace(contributorID),
		)
	}
	return int(count), nil
}

func (r *Repository) CountCoordinateUses(ctx context.Context, latitude float64, longitude float64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&signalsModel{}).
		Where("has_location = ?", true).
		Where("latitude = ?", latitude).
		Where("longitude = ?", longitude).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("quality_repo_count_coordinate_uses_failed", err)
	}
	return int(count), nil
}

func (r *Repository) GetQualityRecord(ctx context.Context, submissionID string) (entities.QualityRecord, error) {
	var row qualityRecordModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.QualityRecord{}, domainerrors.ErrQualityRecordNotFound
		}
		return entities.QualityRecord{}, r.logError("quality_repo_get_record_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveQualityRecord(ctx context.Context, record entities.QualityRecord) error {
	row := qualityRecordModelFromEntity(record)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quality_score":         row.QualityScore,
			"completeness_score":    row.CompletenessScore,
			"gps_accuracy_score":    row.GPSAccuracyScore,
			"photo_quality_score":   row.PhotoQualityScore,
			"response_time_score":   row.ResponseTimeScore,
			"consistency_score":     row.ConsistencyScore,
			"is_anomaly":            row.IsAnomaly,
			"anomaly_reason":        row.AnomalyReason,
			"suitable_for_training": row.SuitableForTraining,
			"updated_at":            row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("quality_repo_save_record_failed", create.Error,
			"submission_id", strings.TrimSpace(record.SubmissionID),
		)
	}
	return nil
}

func (r *Repository) GetPair(ctx context.Context, pairID string) (entities.ValidatedPair, error) {
	var row pairModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pairID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ValidatedPair{}, domainerrors.ErrPairNotFound
		}
		return entities.ValidatedPair{}, r.logError("quality_repo_get_pair_failed", err,
			"pair_id", strings.TrimSpace(pairID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetPairBySubmission(ctx context.Context, submissionID string) (entities.ValidatedPair, bool, error) {
	var row pairModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ValidatedPair{}, false, nil
		}
		return entities.ValidatedPair{}, false, r.logError("quality_repo_get_pair_by_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SavePair(ctx context.Context, pair entities.ValidatedPair) error {
	row := pairModelFromEntity(pair)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"source_text":           row.SourceText,
			"target_text":           row.TargetText,
			"source_language":       row.SourceLanguage,
			"target_language":       row.TargetLanguage,
			"domain":                row.Domain,
			"difficulty":            row.Difficulty,
			"contributor_id":        row.ContributorID,
			"final_quality_score":   row.FinalQualityScore,
			"review_count":          row.ReviewCount,
			"is_validated":          row.IsValidated,
			"suitable_for_training": row.SuitableForTraining,
			"validated_at":          row.ValidatedAt,
			"updated_at":            row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("quality_repo_save_pair_failed", create.Error,
			"pair_id", strings.TrimSpace(pair.PairID),
		)
	}
	return nil
}

func (r *Repository) ListPairs(ctx context.Context, filter ports.PairFilter) ([]entities.ValidatedPair, error) {
	tx := r.db.WithContext(ctx).Model(&pairModel{})
	if filter.OnlyExportable {
		tx = tx.Where("is_validated = ? AND suitable_for_training = ?", true, true)
	}
	if strings.TrimSpace(filter.SourceLanguage) != "" {
		tx = tx.Where("source_language = ?", strings.TrimSpace(filter.SourceLanguage))
	}
	if strings.TrimSpace(filter.TargetLanguage) != "" {
		tx = tx.Where("target_language = ?", strings.TrimSpace(filter.TargetLanguage))
	}
	if strings.TrimSpace(filter.Domain) != "" {
		tx = tx.Where("domain = ?", strings.TrimSpace(filter.Domain))
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	var rows []pairModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("quality_repo_list_pairs_failed", err)
	}
	items := make([]entities.ValidatedPair, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) IncrementExportCount(ctx context.Context, pairID string, exportedAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&pairModel{}).
		Where("id = ?", strings.TrimSpace(pairID)).
		Updates(map[string]any{
			"export_count": gorm.Expr("export_count + 1"),
			"updated_at":   exportedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("quality_repo_increment_export_failed", update.Error,
			"pair_id", strings.TrimSpace(pairID),
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrPairNotFound
	}
	return nil
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
		return r.logError("quality_repo_append_outbox_failed", create.Error,
			"event_id", strings.TrimSpace(envelope.EventID),
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
		return nil, r.logError("quality_repo_list_pending_outbox_failed", err)
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
		return r.logError("quality_repo_mark_outbox_published_failed", update.Error,
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
		return false, r.logError("quality_repo_reserve_event_failed", create.Error,
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
		return false, r.logError("quality_repo_reserve_event_lookup_failed", err,
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
		"module", "translation-quality/quality-gate",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("quality repository operation failed", fields...)
	return err
}

type submissionProjectionModel struct {
	ID             string  `gorm:"column:id;primaryKey"`
	SubmitterID    string  `gorm:"column:submitter_id"`
	SourceText     string  `gorm:"column:source_text"`
	TargetText     string  `gorm:"column:target_text"`
	SourceLanguage string  `gorm:"column:source_language"`
	TargetLanguage string  `gorm:"column:target_language"`
	Domain         string  `gorm:"column:domain"`
	Difficulty     string  `gorm:"column:difficulty"`
	Status         string  `gorm:"column:status"`
	ReviewCount    int     `gorm:"column:review_count"`
	WeightedScore  float64 `gorm:"column:weighted_score"`
}

func (submissionProjectionModel) TableName() string {
	return "translation_submissions"
}

type signalsModel struct {
	SubmissionID      string    `gorm:"column:submission_id;primaryKey"`
	ContributorID     string    `gorm:"column:contributor_id"`
	CompletionSeconds float64   `gorm:"column:completion_seconds"`
	RequiredFields    int       `gorm:"column:required_fields"`
	CompletedFields   int       `gorm:"column:completed_fields"`
	HasLocation       bool      `gorm:"column:has_location"`
	Latitude          float64   `gorm:"column:latitude"`
	Longitude         float64   `gorm:"column:longitude"`
	AccuracyMeters    float64   `gorm:"column:accuracy_meters"`
	PhotoCount        int       `gorm:"column:photo_count"`
	ConsistencyIssues int       `gorm:"column:consistency_issues"`
	CapturedAt        time.Time `gorm:"column:captured_at"`
}

func (signalsModel) TableName() string {
	return "submission_signals"
}

func signalsModelFromEntity(signals entities.QualitySignals) signalsModel {
	row := signalsModel{
		SubmissionID:      strings.TrimSpace(signals.SubmissionID),
		ContributorID:     strings.TrimSpace(signals.ContributorID),
		CompletionSeconds: signals.CompletionSeconds,
		RequiredFields:    signals.RequiredFields,
		CompletedFields:   signals.CompletedFields,
		HasLocation:       signals.HasLocation,
		Latitude:          signals.Latitude,
		Longitude:         signals.Longitude,
		AccuracyMeters:    signals.AccuracyMeters,
		PhotoCount:        signals.PhotoCount,
		ConsistencyIssues: signals.ConsistencyIssues,
		CapturedAt:        signals.CapturedAt.UTC(),
	}
	if row.CapturedAt.IsZero() {
		row.CapturedAt = time.Now().UTC()
	}
	return row
}

func (m signalsModel) toEntity() entities.QualitySignals {
	return entities.QualitySignals{
		SubmissionID:      m.SubmissionID,
		ContributorID:     m.ContributorID,
		CompletionSeconds: m.CompletionSeconds,
		RequiredFields:    m.RequiredFields,
		CompletedFields:   m.CompletedFields,
		HasLocation:       m.HasLocation,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		AccuracyMeters:    m.AccuracyMeters,
		PhotoCount:        m.PhotoCount,
		ConsistencyIssues: m.ConsistencyIssues,
		CapturedAt:        m.CapturedAt.UTC(),
	}
}

type qualityRecordModel struct {
	SubmissionID        string    `gorm:"column:submission_id;primaryKey"`
	QualityScore        float64   `gorm:"column:quality_score"`
	CompletenessScore   float64   `gorm:"column:completeness_score"`
	GPSAccuracyScore    float64   `gorm:"column:gps_accuracy_score"`
	PhotoQualityScore   float64   `gorm:"column:photo_quality_score"`
	ResponseTimeScore   float64   `gorm:"column:response_time_score"`
	ConsistencyScore    float64   `gorm:"column:consistency_score"`
	IsAnomaly           bool      `gorm:"column:is_anomaly"`
	AnomalyReason       string    `gorm:"column:anomaly_reason"`
	SuitableForTraining bool      `gorm:"column:suitable_for_training"`
	CalculatedAt        time.Time `gorm:"column:calculated_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (qualityRecordModel) TableName() string {
	return "response_quality"
}

func qualityRecordModelFromEntity(record entities.QualityRecord) qualityRecordModel {
	row := qualityRecordModel{
		SubmissionID:        strings.TrimSpace(record.SubmissionID),
		QualityScore:        record.OverallScore,
		CompletenessScore:   record.CompletenessScore,
		GPSAccuracyScore:    record.GPSAccuracyScore,
		PhotoQualityScore:   record.PhotoQualityScore,
		ResponseTimeScore:   record.ResponseTimeScore,
		ConsistencyScore:    record.ConsistencyScore,
		IsAnomaly:           record.IsAnomaly,
		AnomalyReason:       strings.TrimSpace(record.AnomalyReason),
		SuitableForTraining: record.SuitableForTraining,
		CalculatedAt:        record.CalculatedAt.UTC(),
		UpdatedAt:           record.UpdatedAt.UTC(),
	}
	if row.CalculatedAt.IsZero() {
		row.CalculatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CalculatedAt
	}
	return row
}

func (m qualityRecordModel) toEntity() entities.QualityRecord {
	return entities.QualityRecord{
		SubmissionID:        m.SubmissionID,
		OverallScore:        m.QualityScore,
		CompletenessScore:   m.CompletenessScore,
		GPSAccuracyScore:    m.GPSAccuracyScore,
		PhotoQualityScore:   m.PhotoQualityScore,
		ResponseTimeScore:   m.ResponseTimeScore,
		ConsistencyScore:    m.ConsistencyScore,
		IsAnomaly:           m.IsAnomaly,
		AnomalyReason:       m.AnomalyReason,
		SuitableForTraining: m.SuitableForTraining,
		CalculatedAt:        m.CalculatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

type pairModel struct {
	ID                  string     `gorm:"column:id;primaryKey"`
	SubmissionID        string     `gorm:"column:submission_id"`
	SourceText          string     `gorm:"column:source_text"`
	TargetText          string     `gorm:"column:target_text"`
	SourceLanguage      string     `gorm:"column:source_language"`
	TargetLanguage      string     `gorm:"column:target_language"`
	Domain              string     `gorm:"column:domain"`
	Difficulty          string     `gorm:"column:difficulty"`
	ContributorID       string     `gorm:"column:contributor_id"`
	FinalQualityScore   float64    `gorm:"column:final_quality_score"`
	ReviewCount         int        `gorm:"column:review_count"`
	IsValidated         bool       `gorm:"column:is_validated"`
	SuitableForTraining bool       `gorm:"column:suitable_for_training"`
	ExportCount         int        `gorm:"column:export_count"`
	ValidatedAt         *time.Time `gorm:"column:validated_at"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (pairModel) TableName() string {
	return "translation_pairs"
}

func pairModelFromEntity(pair entities.ValidatedPair) pairModel {
	row := pairModel{
		ID:                  strings.TrimSpace(pair.PairID),
		SubmissionID:        strings.TrimSpace(pair.SubmissionID),
		SourceText:          pair.SourceText,
		TargetText:          pair.TargetText,
		SourceLanguage:      strings.TrimSpace(pair.SourceLanguage),
		TargetLanguage:      strings.TrimSpace(pair.TargetLanguage),
		Domain:              strings.TrimSpace(pair.Domain),
		Difficulty:          strings.TrimSpace(pair.Difficulty),
		ContributorID:       strings.TrimSpace(pair.ContributorID),
		FinalQualityScore:   pair.FinalQualityScore,
		ReviewCount:         pair.ReviewCount,
		IsValidated:         pair.IsValidated,
		SuitableForTraining: pair.SuitableForTraining,
		ExportCount:         pair.ExportCount,
		ValidatedAt:         normalizeOptionalTime(pair.ValidatedAt),
		CreatedAt:           pair.CreatedAt.UTC(),
		UpdatedAt:           pair.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m pairModel) toEntity() entities.ValidatedPair {
	return entities.ValidatedPair{
		PairID:              m.ID,
		SubmissionID:        m.SubmissionID,
		SourceText:          m.SourceText,
		TargetText:          m.TargetText,
		SourceLanguage:      m.SourceLanguage,
		TargetLanguage:      m.TargetLanguage,
		Domain:              m.Domain,
		Difficulty:          m.Difficulty,
		ContributorID:       m.ContributorID,
		FinalQualityScore:   m.FinalQualityScore,
		ReviewCount:         m.ReviewCount,
		IsValidated:         m.IsValidated,
		SuitableForTraining: m.SuitableForTraining,
		ExportCount:         m.ExportCount,
		ValidatedAt:         normalizeOptionalTime(m.ValidatedAt),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
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
	return "quality_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "quality_event_dedup"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

var (
	_ ports.SubmissionReader  = (*Repository)(nil)
	_ ports.SignalSource      = (*Repository)(nil)
	_ ports.SignalRecorder    = (*Repository)(nil)
	_ ports.AnomalyProbe      = (*Repository)(nil)
	_ ports.QualityRepository = (*Repository)(nil)
	_ ports.PairRepository    = (*Repository)(nil)
	_ ports.OutboxWriter      = (*Repository)(nil)
	_ ports.OutboxRepository  = (*Repository)(nil)
	_ ports.EventDedupStore   = (*Repository)(nil)
)
