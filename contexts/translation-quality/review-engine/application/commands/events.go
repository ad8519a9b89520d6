package commands

import (
	"encoding/json"
	"time"

	"crowdlingo/contexts/translation-quality/review-engine/ports"
)

const (
	eventReviewSubmitted         = "review.submitted"
	eventReviewUpdated           = "review.updated"
	eventSubmissionRegistered    = "submission.registered"
	eventSubmissionResubmitted   = "submission.resubmitted"
	eventSubmissionStatusChanged = "submission.status.changed"
	eventReputationRankChanged   = "reputation.rank.changed"
)

func newReviewEnvelope(
	eventID string,
	eventType string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Command-side events are partitioned by submission (or contributor for
	// reputation events) for stable ordering on scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "review-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "partition_key",
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}
