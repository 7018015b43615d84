package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"alert-bridge/internal/alert"
	"alert-bridge/internal/broker"
	"alert-bridge/internal/httputil"
	"alert-bridge/internal/model"
)

const (
	categoryValidation = "validation"
	categoryDispatch   = "dispatch"
	categoryExchange   = "exchange"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type webhookResponse struct {
	Success  bool                `json:"success"`
	Category string              `json:"category"`
	Message  string              `json:"message"`
	RetCode  *int                `json:"retCode,omitempty"`
	Data     json.RawMessage     `json:"data,omitempty"`
	Order    *model.OrderRequest `json:"order,omitempty"`
	Exchange json.RawMessage     `json:"exchange,omitempty"`
	Detail   string              `json:"detail,omitempty"`
}

// Webhook accepts an alert and relays the exchange answer. Exchange
// rejections are answered with 200 and success=false; the status code only
// distinguishes bad input and failed dispatch.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var a model.Alert
	if err := httputil.ReadJSON(r, &a); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, webhookResponse{Category: categoryValidation, Message: err.Error()})
		return
	}
	res, err := h.svc.PlaceAlert(r.Context(), a)
	if err != nil {
		status, body := errorResponse(err)
		if res.Order.Symbol != "" {
			body.Order = &res.Order
		}
		httputil.WriteJSON(w, status, body)
		return
	}
	code := res.Response.RetCode
	httputil.WriteJSON(w, http.StatusOK, webhookResponse{
		Success:  res.Response.Success,
		Category: categoryExchange,
		Message:  res.Response.RetMsg,
		RetCode:  &code,
		Data:     res.Response.Result,
		Order:    &res.Order,
		Exchange: res.Response.Raw,
	})
}

func errorResponse(err error) (int, webhookResponse) {
	body := webhookResponse{Message: err.Error()}
	var derr *broker.DispatchError
	switch {
	case alert.IsValidation(err):
		body.Category = categoryValidation
		return http.StatusBadRequest, body
	case errors.Is(err, broker.ErrNotConfigured):
		body.Category = categoryDispatch
		return http.StatusServiceUnavailable, body
	case errors.As(err, &derr):
		body.Category = categoryDispatch
		if len(derr.Body) > 0 {
			if json.Valid(derr.Body) {
				body.Exchange = derr.Body
			} else {
				body.Detail = truncate(string(derr.Body), 512)
			}
		}
		if derr.Timeout() {
			return http.StatusGatewayTimeout, body
		}
		return http.StatusBadGateway, body
	}
	body.Category = categoryDispatch
	return http.StatusInternalServerError, body
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
