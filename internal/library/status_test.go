package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusRequested, StatusBorrowed, true},
		{StatusRequested, StatusCancelled, true},
		{StatusBorrowed, StatusReturned, true},
		{StatusRequested, StatusReturned, false},
		{StatusBorrowed, StatusCancelled, false},
		{StatusBorrowed, StatusRequested, false},
		{StatusReturned, StatusBorrowed, false},
		{StatusReturned, StatusRequested, false},
		{StatusCancelled, StatusBorrowed, false},
		{Status("bogus"), StatusBorrowed, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
