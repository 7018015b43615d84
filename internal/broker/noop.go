package broker

import (
	"context"
	"errors"

	"alert-bridge/internal/model"
)

var ErrNotConfigured = errors.New("exchange adapter not configured")

// DisabledAdapter rejects every call. It is used when the bridge runs
// without exchange credentials.
type DisabledAdapter struct{}

func NewDisabledAdapter() *DisabledAdapter {
	return &DisabledAdapter{}
}

func (a *DisabledAdapter) PlaceOrder(ctx context.Context, req model.OrderRequest) (Response, error) {
	return Response{}, ErrNotConfigured
}

func (a *DisabledAdapter) ServerTime(ctx context.Context) (Response, error) {
	return Response{}, ErrNotConfigured
}
