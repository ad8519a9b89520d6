package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/review-engine/domain/errors"
	"crowdlingo/contexts/translation-quality/review-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

type Store struct {
	mu sync.RWMutex

	reviews     map[string]entities.Review
	submissions map[string]entities.Submission
	reputations map[string]entities.Reputation
	outbox      map[string]outboxRecord
	eventDedup  map[string]dedupRecord
}

func NewStore(seed []entities.Submission) *Store {
	submissions := make(map[string]entities.Submission, len(seed))
	for _, submission := range seed {
		submissions[submission.SubmissionID] = submission
	}
	return &Store{
		reviews:     make(map[string]entities.Review),
		submissions: submissions,
		reputations: make(map[string]entities.Reputation),
		outbox:      make(map[string]outboxRecord),
		eventDedup:  make(map[string]dedupRecord),
	}
}

func (s *Store) SaveReview(_ context.Context, review entities.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[strings.TrimSpace(review.ReviewID)] = review
	return nil
}

func (s *Store) GetReview(_ context.Context, reviewID string) (entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	review, ok := s.reviews[strings.TrimSpace(reviewID)]
	if !ok {
		return entities.Review{}, domainerrors.ErrReviewNotFound
	}
	return review, nil
}

func (s *Store) GetReviewByIdentity(
	_ context.Context,
	submissionID string,
	reviewerID string,
) (entities.Review, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	submissionID = strings.TrimSpace(submissionID)
	reviewerID = strings.TrimSpace(reviewerID)

	for _, review := range s.reviews {
		if review.SubmissionID != submissionID || review.ReviewerID != reviewerID {
			continue
		}
		if review.Superseded {
			continue
		}
		return review, true, nil
	}
	return entities.Review{}, false, nil
}

func (s *Store) ListReviewsBySubmission(_ context.Context, submissionID string) ([]entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Review, 0)
	for _, review := range s.reviews {
		if review.SubmissionID == strings.TrimSpace(submissionID) {
			items = append(items, review)
		}
	}
	sortReviewsByCreation(items)
	return items, nil
}

func (s *Store) ListReviewsByReviewer(_ context.Context, reviewerID string) ([]entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Review, 0)
	for _, review := range s.reviews {
		if review.ReviewerID == strings.TrimSpace(reviewerID) {
			items = append(items, review)
		}
	}
	sortReviewsByCreation(items)
	return items, nil
}

func (s *Store) SupersedeReviewsBySubmission(
	_ context.Context,
	submissionID string,
	updatedAt time.Time,
) ([]entities.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]entities.Review, 0)
	for key, review := range s.reviews {
		if review.SubmissionID != strings.TrimSpace(submissionID) {
			continue
		}
		if review.Superseded {
			continue
		}
		review.Superseded = true
		review.UpdatedAt = updatedAt.UTC()
		s.reviews[key] = review
		updated = append(updated, review)
	}
	return updated, nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) SaveSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(submission.SubmissionID)
	if existing, ok := s.submissions[key]; ok {
		submission.AggregateVersion = existing.AggregateVersion
	}
	s.submissions[key] = submission
	return nil
}

func (s *Store) SaveAggregate(
	_ context.Context,
	submission entities.Submission,
	expectedVersion int64,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(submission.SubmissionID)
	existing, ok := s.submissions[key]
	if !ok {
		return domainerrors.ErrSubmissionNotFound
	}
	if existing.AggregateVersion != expectedVersion {
		return domainerrors.ErrAggregationConflict
	}
	submission.AggregateVersion = expectedVersion + 1
	s.submissions[key] = submission
	return nil
}

func (s *Store) GetReputation(_ context.Context, userID string) (entities.Reputation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reputation, ok := s.reputations[strings.TrimSpace(userID)]
	if !ok {
		return entities.Reputation{}, false, nil
	}
	return reputation, true, nil
}

func (s *Store) SaveReputation(_ context.Context, reputation entities.Reputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reputations[strings.TrimSpace(reputation.UserID)] = reputation
	return nil
}

func (s *Store) ListReputations(_ context.Context) ([]entities.Reputation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Reputation, 0, len(s.reputations))
	for _, reputation := range s.reputations {
		items = append(items, reputation)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortReviewsByCreation(items []entities.Review) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ReviewedAt.Equal(items[j].ReviewedAt) {
			return items[i].ReviewID < items[j].ReviewID
		}
		return items[i].ReviewedAt.Before(items[j].ReviewedAt)
	})
}

var (
	_ ports.ReviewRepository     = (*Store)(nil)
	_ ports.SubmissionRepository = (*Store)(nil)
	_ ports.ReputationRepository = (*Store)(nil)
	_ ports.OutboxWriter         = (*Store)(nil)
	_ ports.OutboxRepository     = (*Store)(nil)
	_ ports.EventDedupStore      = (*Store)(nil)
	_ ports.Clock                = (*Store)(nil)
	_ ports.IDGenerator          = (*Store)(nil)
)
