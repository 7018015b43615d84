package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"alert-bridge/internal/metrics"
	"alert-bridge/internal/model"

	"github.com/rs/zerolog"
)

const (
	MainnetBaseURL = "https://api.bybit.com"
	TestnetBaseURL = "https://api-testnet.bybit.com"

	DefaultRecvWindow int64 = 5000
	DefaultTimeout          = 10 * time.Second

	signType        = "2"
	createOrderPath = "/v5/order/create"
	serverTimePath  = "/v5/market/time"
	maxBodyBytes    = 1 << 20
)

// Credentials are fixed at startup and never mutated afterwards.
type Credentials struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

func BaseURLFor(testnet bool) string {
	if testnet {
		return TestnetBaseURL
	}
	return MainnetBaseURL
}

// Bybit places spot orders through the v5 REST API. A Bybit value is
// immutable after construction and safe for concurrent use.
type Bybit struct {
	creds      Credentials
	http       Doer
	clock      Clock
	recvWindow int64
	timeout    time.Duration
	log        zerolog.Logger
}

type Option func(*Bybit)

func WithHTTPClient(d Doer) Option {
	return func(b *Bybit) { b.http = d }
}

func WithClock(c Clock) Option {
	return func(b *Bybit) { b.clock = c }
}

func WithTimeout(d time.Duration) Option {
	return func(b *Bybit) { b.timeout = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(b *Bybit) { b.log = log }
}

func NewBybit(creds Credentials, opts ...Option) *Bybit {
	b := &Bybit{
		creds:      creds,
		clock:      SystemClock{},
		recvWindow: DefaultRecvWindow,
		timeout:    DefaultTimeout,
		log:        zerolog.Nop(),
	}
	if b.creds.BaseURL == "" {
		b.creds.BaseURL = MainnetBaseURL
	}
	b.creds.BaseURL = strings.TrimRight(b.creds.BaseURL, "/")
	for _, opt := range opts {
		opt(b)
	}
	if b.http == nil {
		b.http = &http.Client{Timeout: b.timeout}
	}
	return b
}

// PlaceOrder signs req and submits it once. Exchange rejections come back as
// a Response with Success=false; a *DispatchError means no exchange verdict
// was obtained.
func (b *Bybit) PlaceOrder(ctx context.Context, req model.OrderRequest) (Response, error) {
	body, err := EncodeOrder(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode order: %w", err)
	}
	env := NewEnvelope(b.clock.NowMillis(), b.recvWindow, b.creds.APIKey, b.creds.APISecret, body)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.creds.BaseURL+createOrderPath, bytes.NewReader(body))
	if err != nil {
		return Response{}, &DispatchError{Op: "create order", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	env.Apply(httpReq.Header, b.creds.APIKey)

	return b.do(httpReq, "create order")
}

// ServerTime relays the exchange clock endpoint. It is unsigned and used as
// a connectivity check.
func (b *Bybit) ServerTime(ctx context.Context) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.creds.BaseURL+serverTimePath, nil)
	if err != nil {
		return Response{}, &DispatchError{Op: "server time", Err: err}
	}
	return b.do(httpReq, "server time")
}

func (b *Bybit) do(httpReq *http.Request, op string) (Response, error) {
	start := time.Now()
	res, err := b.send(httpReq, op)
	elapsed := time.Since(start)

	outcome, level := "ok", zerolog.DebugLevel
	switch {
	case err != nil:
		outcome, level = "dispatch_error", zerolog.WarnLevel
	case !res.Success:
		outcome = "rejected"
	}
	metrics.ExchangeRequestDuration.WithLabelValues(op, outcome).Observe(elapsed.Seconds())
	b.log.WithLevel(level).
		Err(err).
		Str("event", "api_call").
		Str("method", httpReq.Method).
		Str("endpoint", httpReq.URL.Path).
		Int("http_status", res.HTTPStatus).
		Int("ret_code", res.RetCode).
		Dur("duration", elapsed).
		Msg(op)
	return res, err
}

func (b *Bybit) send(httpReq *http.Request, op string) (Response, error) {
	resp, err := b.http.Do(httpReq)
	if err != nil {
		return Response{}, &DispatchError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return Response{HTTPStatus: resp.StatusCode}, &DispatchError{Op: op, StatusCode: resp.StatusCode, Body: raw, Err: err}
	}
	if len(raw) > maxBodyBytes {
		raw = raw[:maxBodyBytes]
		return Response{HTTPStatus: resp.StatusCode}, &DispatchError{Op: op, StatusCode: resp.StatusCode, Body: raw, Err: errResponseTooLarge}
	}
	return decodeResponse(op, resp.StatusCode, raw)
}

var errResponseTooLarge = fmt.Errorf("response too large: exceeds %d bytes", maxBodyBytes)

type envelope struct {
	RetCode    *int            `json:"retCode"`
	RetMsg     string          `json:"retMsg"`
	Result     json.RawMessage `json:"result"`
	RetExtInfo json.RawMessage `json:"retExtInfo"`
	Time       int64           `json:"time"`
}

// decodeResponse keeps any exchange envelope, whatever the HTTP status, so
// that the exchange's own error code and message reach the caller.
func decodeResponse(op string, status int, raw []byte) (Response, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Response{HTTPStatus: status, Raw: raw}, &DispatchError{Op: op, StatusCode: status, Body: raw, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.RetCode == nil {
		return Response{HTTPStatus: status, Raw: raw}, &DispatchError{Op: op, StatusCode: status, Body: raw, Err: errors.New("response has no retCode")}
	}
	ok2xx := status >= 200 && status < 300
	return Response{
		Success:    *env.RetCode == 0 && ok2xx,
		RetCode:    *env.RetCode,
		RetMsg:     env.RetMsg,
		Result:     env.Result,
		RetExtInfo: env.RetExtInfo,
		Time:       env.Time,
		HTTPStatus: status,
		Raw:        raw,
	}, nil
}
