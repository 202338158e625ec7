package library

type Status string

const (
	StatusRequested Status = "Requested"
	StatusBorrowed  Status = "Borrowed"
	StatusReturned  Status = "Returned"
	StatusCancelled Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusRequested: {StatusBorrowed: true, StatusCancelled: true},
	StatusBorrowed:  {StatusReturned: true},
	StatusReturned:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
