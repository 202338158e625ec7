package library

import (
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventLoanRequested = "LoanRequested"
	EventLoanApproved  = "LoanApproved"
	EventLoanReturned  = "LoanReturned"
	EventLoanCancelled = "LoanCancelled"
)

// All lifecycle events go through one topic so events for a single loan keep
// their order on one partition.
const TopicLoanEvents = "loan.events"

func PartitionKey(loanID string) []byte { return []byte(loanID) }

type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"traceId,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type LoanEventPayload struct {
	LoanID     string     `json:"loanId"`
	CustomerID string     `json:"customerId"`
	BookID     string     `json:"bookId"`
	Status     Status     `json:"status"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	FineAmount int64      `json:"fineAmount"`
}

// Publisher is what the engine needs from a kafka producer.
// *kafka.Producer (internal/kafka) satisfies it.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
