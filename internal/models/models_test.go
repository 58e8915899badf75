package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_MarshalJSON(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"1200", "1200.00"},
		{"1200.00", "1200.00"},
		{"3000.5", "3000.50"},
		{"99.99", "99.99"},
		{"0.01", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			e := Entry{
				ID:              1,
				Title:           "Rent",
				Value:           decimal.RequireFromString(tt.value),
				TransactionDate: NewDate(2024, time.January, 5),
			}
			b, err := json.Marshal(e)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":1,"title":"Rent","description":null,"value":"`+tt.want+`","transaction_date":"2024-01-05"}`, string(b))
		})
	}
}

func TestEntry_MarshalJSONInSlice(t *testing.T) {
	desc := "January"
	b, err := json.Marshal([]Entry{{ID: 2, Title: "Rent", Description: &desc, Value: decimal.NewFromInt(5), TransactionDate: NewDate(2024, time.February, 1)}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2,"title":"Rent","description":"January","value":"5.00","transaction_date":"2024-02-01"}]`, string(b))
}
