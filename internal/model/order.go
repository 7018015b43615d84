package model

import "alert-bridge/internal/types"

// OrderRequest is the body of a Bybit v5 order creation call. Field order is
// the wire order and is covered by the request signature.
type OrderRequest struct {
	Category    types.Category    `json:"category"`
	Symbol      string            `json:"symbol"`
	Side        types.OrderSide   `json:"side"`
	OrderType   types.OrderType   `json:"orderType"`
	Qty         string            `json:"qty"`
	TimeInForce types.TimeInForce `json:"timeInForce"`
	Price       string            `json:"price,omitempty"`
}
