package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"alert-bridge/internal/model"
)

// Response is the decoded exchange envelope. Raw holds the body exactly as
// it was received.
type Response struct {
	Success    bool            `json:"success"`
	RetCode    int             `json:"retCode"`
	RetMsg     string          `json:"retMsg"`
	Result     json.RawMessage `json:"result,omitempty"`
	RetExtInfo json.RawMessage `json:"retExtInfo,omitempty"`
	Time       int64           `json:"time,omitempty"`
	HTTPStatus int             `json:"-"`
	Raw        json.RawMessage `json:"-"`
}

type Adapter interface {
	PlaceOrder(ctx context.Context, req model.OrderRequest) (Response, error)
	ServerTime(ctx context.Context) (Response, error)
}

// Doer is the subset of *http.Client the adapter needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Clock interface {
	NowMillis() int64
}

type ClockFunc func() int64

func (f ClockFunc) NowMillis() int64 { return f() }

type SystemClock struct{}

func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }
