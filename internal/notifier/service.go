package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-library-loans.git/internal/kafka"
	"github.com/ariefcatur/go-library-loans.git/internal/library"
	"github.com/ariefcatur/go-library-loans.git/internal/redisx"
)

// Service consumes loan lifecycle events: it keeps the redis status cache
// warm, accumulates outstanding fine totals per customer and logs the
// notifications a mail/SMS gateway would pick up.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) HandleLoanEvent(ctx context.Context, m kafkago.Message) error {
	var env library.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup on event id; the producer may deliver more than once
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[library.LoanEventPayload](env.Payload)
	if err != nil {
		return err
	}

	skey := fmt.Sprintf(redisx.KeyLoanStatus, p.LoanID)
	_ = s.Redis.Set(ctx, skey, string(p.Status), redisx.TTLStatusCache).Err()

	switch env.EventType {
	case library.EventLoanApproved:
		if p.DueDate != nil {
			log.Printf("loan %s approved for customer %s, due %s", p.LoanID, p.CustomerID, p.DueDate.Format("2006-01-02"))
		}
	case library.EventLoanReturned:
		if p.FineAmount > 0 {
			fkey := fmt.Sprintf(redisx.KeyCustomerFines, p.CustomerID)
			total, err := s.Redis.IncrBy(ctx, fkey, p.FineAmount).Result()
			if err != nil {
				return err
			}
			_ = s.Redis.Expire(ctx, fkey, redisx.TTLFines).Err()
			log.Printf("loan %s returned late, fine %d (customer %s outstanding %d)", p.LoanID, p.FineAmount, p.CustomerID, total)
		}
	case library.EventLoanRequested, library.EventLoanCancelled:
		// status cache update above is all these need
	default:
		log.Printf("ignoring event type %s", env.EventType)
	}
	return nil
}
