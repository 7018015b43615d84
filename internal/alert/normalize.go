// Package alert turns webhook alerts into exchange order requests.
package alert

import (
	"errors"
	"strings"

	"alert-bridge/internal/model"
	"alert-bridge/internal/types"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxAmountExponent = 30
	maxAmountLength   = 40
)

var (
	errNotNumeric  = errors.New("not a number")
	errNotPositive = errors.New("not positive")
	errOutOfRange  = errors.New("out of range")
)

// NormalizeSymbol rewrites a charting ticker into the exchange symbol:
// separators are dropped, the result is uppercased and a bare USD quote is
// mapped to USDT ("BTC/usd" -> "BTCUSDT").
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.ReplaceAll(raw, "/", ""))
	if strings.HasSuffix(s, "USD") && !strings.HasSuffix(s, "USDT") {
		s += "T"
	}
	return s
}

// BuildOrderRequest validates a and produces the spot order it describes.
// takeProfit and stopLoss are accepted on the alert but never forwarded.
func BuildOrderRequest(a model.Alert) (model.OrderRequest, error) {
	symbol := NormalizeSymbol(strings.TrimSpace(a.Symbol))
	if symbol == "" {
		return model.OrderRequest{}, invalid("symbol", a.Symbol, ErrMissingSymbol)
	}
	side, err := ParseSide(a.Action)
	if err != nil {
		return model.OrderRequest{}, err
	}
	orderType, err := ParseOrderType(a.OrderType)
	if err != nil {
		return model.OrderRequest{}, err
	}
	if !a.Quantity.Valid {
		return model.OrderRequest{}, invalid("quantity", "", ErrMissingQuantity)
	}
	qty, err := FormatAmount(a.Quantity)
	if err != nil {
		return model.OrderRequest{}, invalid("quantity", a.Quantity.Raw, ErrInvalidQuantity)
	}
	req := model.OrderRequest{
		Category:    types.CategorySpot,
		Symbol:      symbol,
		Side:        side,
		OrderType:   orderType,
		Qty:         qty,
		TimeInForce: types.TimeInForceGTC,
	}
	if orderType == types.OrderTypeLimit {
		if !a.Price.Valid {
			return model.OrderRequest{}, invalid("price", "", ErrMissingPrice)
		}
		price, err := FormatAmount(a.Price)
		if err != nil {
			return model.OrderRequest{}, invalid("price", a.Price.Raw, ErrInvalidPrice)
		}
		req.Price = price
	}
	return req, nil
}

func ParseSide(action string) (types.OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "buy":
		return types.OrderSideBuy, nil
	case "sell":
		return types.OrderSideSell, nil
	}
	return "", invalid("action", action, ErrInvalidAction)
}

// ParseOrderType title-cases the alert order type. An empty value means a
// market order.
func ParseOrderType(raw string) (types.OrderType, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.OrderTypeMarket, nil
	}
	switch t := types.OrderType(cases.Title(language.Und).String(trimmed)); t {
	case types.OrderTypeMarket, types.OrderTypeLimit:
		return t, nil
	}
	return "", invalid("orderType", raw, ErrInvalidOrderType)
}

// FormatAmount converts an alert amount into the plain decimal string the
// exchange expects. The value is never rounded; exponent notation is
// expanded and insignificant trailing zeros are dropped. Exponents beyond
// ±30 and results longer than 40 characters are rejected before expansion.
func FormatAmount(a model.Amount) (string, error) {
	if !a.Valid || a.Raw == "" {
		return "", errNotNumeric
	}
	d, err := decimal.NewFromString(a.Raw)
	if err != nil {
		return "", errNotNumeric
	}
	if !d.IsPositive() {
		return "", errNotPositive
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return "", errOutOfRange
	}
	s := d.String()
	if len(s) > maxAmountLength {
		return "", errOutOfRange
	}
	return s, nil
}
