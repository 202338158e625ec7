package redisx

import "time"

const (
	// Latest known loan status: loan_status:{loan_id} -> "Borrowed" etc.
	KeyLoanStatus = "loan_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Outstanding fine total per customer: fines:{customer_id} -> minor units
	KeyCustomerFines = "fines:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLFines       = 30 * 24 * time.Hour
)
