package orders

import (
	"context"

	"alert-bridge/internal/alert"
	"alert-bridge/internal/broker"
	"alert-bridge/internal/metrics"
	"alert-bridge/internal/model"

	"github.com/rs/zerolog"
)

type Service struct {
	adapter broker.Adapter
	log     zerolog.Logger
}

func NewService(adapter broker.Adapter, log zerolog.Logger) *Service {
	return &Service{adapter: adapter, log: log}
}

// PlaceAlertResult carries the order that was built and the exchange verdict.
// Order is zero when the alert failed validation.
type PlaceAlertResult struct {
	Order    model.OrderRequest
	Response broker.Response
}

// PlaceAlert normalizes a and submits the resulting order once. The error is
// an *alert.ValidationError, a *broker.DispatchError or broker.ErrNotConfigured;
// an exchange rejection is not an error and shows up as Response.Success=false.
func (s *Service) PlaceAlert(ctx context.Context, a model.Alert) (PlaceAlertResult, error) {
	log := s.log.With().Str("raw_symbol", a.Symbol).Str("action", a.Action).Logger()
	if a.TakeProfit.Valid || a.StopLoss.Valid {
		log.Debug().Str("take_profit", a.TakeProfit.Raw).Str("stop_loss", a.StopLoss.Raw).Msg("bracket fields are not forwarded")
	}

	req, err := alert.BuildOrderRequest(a)
	if err != nil {
		metrics.AlertsTotal.WithLabelValues("invalid").Inc()
		log.Warn().Err(err).Msg("alert rejected")
		return PlaceAlertResult{}, err
	}
	log = log.With().Str("symbol", req.Symbol).Str("side", string(req.Side)).Str("order_type", string(req.OrderType)).Str("qty", req.Qty).Logger()
	metrics.OrdersTotal.WithLabelValues(string(req.Side), string(req.OrderType)).Inc()

	resp, err := s.adapter.PlaceOrder(ctx, req)
	res := PlaceAlertResult{Order: req, Response: resp}
	if err != nil {
		metrics.AlertsTotal.WithLabelValues("dispatch_error").Inc()
		log.Error().Err(err).Msg("order dispatch failed")
		return res, err
	}
	if !resp.Success {
		metrics.AlertsTotal.WithLabelValues("rejected").Inc()
		log.Warn().Int("ret_code", resp.RetCode).Str("ret_msg", resp.RetMsg).Int("http_status", resp.HTTPStatus).Msg("order rejected by exchange")
		return res, nil
	}
	metrics.AlertsTotal.WithLabelValues("accepted").Inc()
	log.Info().RawJSON("result", nonEmpty(resp.Result)).Msg("order placed")
	return res, nil
}

func nonEmpty(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
