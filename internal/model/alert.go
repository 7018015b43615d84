package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Alert is the decoded webhook payload sent by the charting platform.
type Alert struct {
	Symbol     string `json:"symbol"`
	Action     string `json:"action"`
	Quantity   Amount `json:"quantity"`
	Price      Amount `json:"price"`
	TakeProfit Amount `json:"takeProfit"`
	StopLoss   Amount `json:"stopLoss"`
	OrderType  string `json:"orderType"`
}

// Amount holds a numeric alert field exactly as it was sent. Alerts carry
// sizes either as JSON numbers or as strings; the literal is kept so that
// conversion never goes through float64.
type Amount struct {
	Raw   string
	Valid bool
}

func NewAmount(raw string) Amount {
	return Amount{Raw: strings.TrimSpace(raw), Valid: true}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = NewAmount(s)
		return nil
	}
	// Anything else (numbers, but also bools or objects) is kept verbatim and
	// rejected later by the amount conversion with a field-level error.
	*a = Amount{Raw: string(b), Valid: true}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Raw)
}

func (a Amount) String() string {
	return a.Raw
}
