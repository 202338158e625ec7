package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		LoanID string `json:"loanId"`
		Fine   int64  `json:"fineAmount"`
	}

	raw := json.RawMessage(`{"loanId":"l1","fineAmount":15000}`)
	p, err := UnwrapPayload[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, "l1", p.LoanID)
	assert.Equal(t, int64(15000), p.Fine)

	_, err = UnwrapPayload[payload](json.RawMessage(`{"loanId":`))
	assert.Error(t, err)
}
