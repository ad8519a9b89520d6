package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/quality-gate/domain/errors"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"

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

	submissions map[string]ports.SubmissionProjection
	signals     map[string]entities.QualitySignals
	records     map[string]entities.QualityRecord
	pairs       map[string]entities.ValidatedPair
	outbox      map[string]outboxRecord
	eventDedup  map[string]dedupRecord
}

func NewStore() *Store {
	return &Store{
		submissions: make(map[string]ports.SubmissionProjection),
		signals:     make(map[string]entities.QualitySignals),
		records:     make(map[string]entities.QualityRecord),
		pairs:       make(map[string]entities.ValidatedPair),
		outbox:      make(map[string]outboxRecord),
		eventDedup:  make(map[string]dedupRecord),
	}
}

func (s *Store) SetSubmission(submission ports.SubmissionProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[strings.TrimSpace(submission.SubmissionID)] = submission
}

func (s *Store) SetSignals(signals entities.QualitySignals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[strings.TrimSpace(signals.SubmissionID)] = signals
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (ports.SubmissionProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return ports.SubmissionProjection{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) SaveSignals(_ context.Context, signals entities.QualitySignals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[strings.TrimSpace(signals.SubmissionID)] = signals
	return nil
}

func (s *Store) GetSignals(_ context.Context, submissionID string) (entities.QualitySignals, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	signals, ok := s.signals[strings.TrimSpace(submissionID)]
	return signals, ok, nil
}

func (s *Store) CountDuplicateTargetText(
	_ context.Context,
	contributorID string,
	targetText string,
	since time.Time,
) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for id, submission := range s.submissions {
		if submission.SubmitterID != strings.TrimSpace(contributorID) {
			continue
		}
		if submission.TargetText != targetText {
			continue
		}
		if signals, ok := s.signals[id]; ok && !signals.CapturedAt.IsZero() && signals.CapturedAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *Store) CountCoordinateUses(_ context.Context, latitude float64, longitude float64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, signals := range s.signals {
		if !signals.HasLocation {
			continue
		}
		if signals.Latitude == latitude && signals.Longitude == longitude {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetQualityRecord(_ context.Context, submissionID string) (entities.QualityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[strings.TrimSpace(submissionID)]
	if !ok {
		return entities.QualityRecord{}, domainerrors.ErrQualityRecordNotFound
	}
	return record, nil
}

func (s *Store) SaveQualityRecord(_ context.Context, record entities.QualityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[strings.TrimSpace(record.SubmissionID)] = record
	return nil
}

func (s *Store) GetPair(_ context.Context, pairID string) (entities.ValidatedPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pair, ok := s.pairs[strings.TrimSpace(pairID)]
	if !ok {
		return entities.ValidatedPair{}, domainerrors.ErrPairNotFound
	}
	return pair, nil
}

func (s *Store) GetPairBySubmission(_ context.Context, submissionID string) (entities.ValidatedPair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pair := range s.pairs {
		if pair.SubmissionID == strings.TrimSpace(submissionID) {
			return pair, true, nil
		}
	}
	return entities.ValidatedPair{}, false, nil
}

func (s *Store) SavePair(_ context.Context, pair entities.ValidatedPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(pair.PairID)
	if existing, ok := s.pairs[key]; ok {
		// The export counter is owned by IncrementExportCount.
		pair.ExportCount = existing.ExportCount
	}
	s.pairs[key] = pair
	return nil
}

func (s *Store) ListPairs(_ context.Context, filter ports.PairFilter) ([]entities.ValidatedPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.ValidatedPair, 0, len(s.pairs))
	for _, pair := range s.pairs {
		if filter.OnlyExportable && !pair.Exportable() {
			continue
		}
		if filter.SourceLanguage != "" && pair.SourceLanguage != filter.SourceLanguage {
			continue
		}
		if filter.TargetLanguage != "" && pair.TargetLanguage != filter.TargetLanguage {
			continue
		}
		if filter.Domain != "" && pair.Domain != filter.Domain {
			continue
		}
		items = append(items, pair)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PairID < items[j].PairID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) IncrementExportCount(_ context.Context, pairID string, exportedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.pairs[strings.TrimSpace(pairID)]
	if !ok {
		return domainerrors.ErrPairNotFound
	}
	pair.ExportCount++
	pair.UpdatedAt = exportedAt.UTC()
	s.pairs[strings.TrimSpace(pairID)] = pair
	return nil
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

var (
	_ ports.SubmissionReader  = (*Store)(nil)
	_ ports.SignalSource      = (*Store)(nil)
	_ ports.SignalRecorder    = (*Store)(nil)
	_ ports.AnomalyProbe      = (*Store)(nil)
	_ ports.QualityRepository = (*Store)(nil)
	_ ports.PairRepository    = (*Store)(nil)
	_ ports.OutboxWriter      = (*Store)(nil)
	_ ports.OutboxRepository  = (*Store)(nil)
	_ ports.EventDedupStore   = (*Store)(nil)
	_ ports.Clock             = (*Store)(nil)
	_ ports.IDGenerator       = (*Store)(nil)
)
