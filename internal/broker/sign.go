package broker

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"alert-bridge/internal/model"
)

// EncodeOrder serializes req as compact JSON. The bytes returned are both
// signed and sent, so the field order of model.OrderRequest is part of the
// signature.
func EncodeOrder(req model.OrderRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SignPayload computes the v5 HMAC-SHA256 signature:
// hex(HMAC(secret, timestamp + apiKey + recvWindow + body)).
func SignPayload(timestamp, recvWindow int64, apiKey, apiSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte(apiKey))
	mac.Write([]byte(strconv.FormatInt(recvWindow, 10)))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func Sign(timestamp, recvWindow int64, req model.OrderRequest, apiKey, apiSecret string) (string, error) {
	body, err := EncodeOrder(req)
	if err != nil {
		return "", err
	}
	return SignPayload(timestamp, recvWindow, apiKey, apiSecret, body), nil
}

// Envelope is the per-request authentication material. It is valid for one
// request only.
type Envelope struct {
	Timestamp  int64
	RecvWindow int64
	Signature  string
}

func NewEnvelope(timestamp, recvWindow int64, apiKey, apiSecret string, body []byte) Envelope {
	return Envelope{
		Timestamp:  timestamp,
		RecvWindow: recvWindow,
		Signature:  SignPayload(timestamp, recvWindow, apiKey, apiSecret, body),
	}
}

func (e Envelope) Apply(h http.Header, apiKey string) {
	h.Set("X-BAPI-API-KEY", apiKey)
	h.Set("X-BAPI-SIGN", e.Signature)
	h.Set("X-BAPI-SIGN-TYPE", signType)
	h.Set("X-BAPI-TIMESTAMP", strconv.FormatInt(e.Timestamp, 10))
	h.Set("X-BAPI-RECV-WINDOW", strconv.FormatInt(e.RecvWindow, 10))
}
