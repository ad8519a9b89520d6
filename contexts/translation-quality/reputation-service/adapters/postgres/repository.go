package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "crowdlingo/contexts/translation-quality/reputation-service/domain/errors"
	"crowdlingo/contexts/translation-quality/reputation-service/ports"

	"gorm.io/gorm"
)

// Repository reads the user_reputation table owned by the review engine.
// This module never writes it.
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

func (r *Repository) GetContributorProfile(ctx context.Context, userID string) (ports.ContributorProfile, error) {
	var row reputationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ContributorProfile{}, domainerrors.ErrNotFound
		}
		return ports.ContributorProfile{}, r.logError("reputation_repo_get_profile_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toProfile(), nil
}

func (r *Repository) GetLeaderboard(ctx context.Context, filter ports.LeaderboardFilter) (ports.Leaderboard, error) {
	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&reputationModel{})
		if filter.Rank != "" {
			tx = tx.Where("rank = ?", string(filter.Rank))
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return ports.Leaderboard{}, r.logError("reputation_repo_count_leaderboard_failed", err)
	}

	var rows []reputationModel
	if err := base().
		Order("reputation_score DESC, user_id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&rows).Error; err != nil {
		return ports.Leaderboard{}, r.logError("reputation_repo_list_leaderboard_failed", err)
	}

	entries := make([]ports.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, ports.LeaderboardEntry{
			Position:        filter.Offset + i + 1,
			UserID:          row.UserID,
			Rank:            ports.Rank(row.Rank),
			RankLevel:       row.RankLevel,
			ReputationScore: row.ReputationScore,
			ReviewWeight:    row.ReviewWeight,
			AccuracyRate:    row.AccuracyRate,
			Contributions:   row.TranslationsSubmitted + row.ReviewsSubmitted,
		})
	}

	board := ports.Leaderboard{
		Entries:           entries,
		TotalContributors: int(total),
	}

	if viewer := strings.TrimSpace(filter.ViewerUserID); viewer != "" {
		position, err := r.viewerPosition(ctx, viewer, filter.Rank)
		if err != nil {
			return ports.Leaderboard{}, err
		}
		board.YourPosition = position
	}
	return board, nil
}

// viewerPosition is 1 plus the number of contributors ranked strictly above
// the viewer inside the filtered set; zero when the viewer is outside it.
func (r *Repository) viewerPosition(ctx context.Context, userID string, rank ports.Rank) (int, error) {
	var row reputationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("reputation_repo_viewer_lookup_failed", err,
			"user_id", userID,
		)
	}
	if rank != "" && row.Rank != string(rank) {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Model(&reputationModel{}).
		Where("reputation_score > ? OR (reputation_score = ? AND user_id < ?)",
			row.ReputationScore, row.ReputationScore, row.UserID)
	if rank != "" {
		tx = tx.Where("rank = ?", string(rank))
	}
	var above int64
	if err := tx.Count(&above).Error; err != nil {
		return 0, r.logError("reputation_repo_viewer_position_failed", err,
			"user_id", userID,
		)
	}
	return int(above) + 1, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "translation-quality/reputation-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("reputation repository operation failed", fields...)
	return err
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
}

func (reputationModel) TableName() string {
	return "user_reputation"
}

func (m reputationModel) toProfile() ports.ContributorProfile {
	rank := ports.Rank(m.Rank)
	profile := ports.ContributorProfile{
		UserID:                m.UserID,
		ReputationScore:       m.ReputationScore,
		ReviewWeight:          m.ReviewWeight,
		Rank:                  rank,
		RankLevel:             m.RankLevel,
		TranslationsSubmitted: m.TranslationsSubmitted,
		TranslationsAccepted:  m.TranslationsAccepted,
		TranslationsRejected:  m.TranslationsRejected,
		AccuracyRate:          m.AccuracyRate,
		ReviewsSubmitted:      m.ReviewsSubmitted,
		ReviewsUpvoted:        m.ReviewsUpvoted,
		ReviewsDownvoted:      m.ReviewsDownvoted,
		FirstContributionAt:   normalizeOptionalTime(m.FirstContributionAt),
		LastContributionAt:    normalizeOptionalTime(m.LastContributionAt),
	}
	next := ports.NextRankScore(rank)
	profile.RankProgress = ports.RankProgress{
		CurrentScore:  m.ReputationScore,
		NextRankScore: next,
	}
	if next > m.ReputationScore {
		profile.RankProgress.ScoreToNextRank = next - m.ReputationScore
	}
	settled := m.ReviewsUpvoted + m.ReviewsDownvoted
	if settled > 0 {
		profile.ReviewAgreementRate = float64(m.ReviewsUpvoted) / float64(settled)
	}
	return profile
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

var _ ports.Repository = (*Repository)(nil)
