package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"prediction-wallet-service/pkg/common"
)

// GatewayClient wraps the payment gateway's payin/payout endpoints. Every
// request is signed with HMAC-SHA256 over the canonical (recursively
// key-sorted) JSON payload, key = apiSecret + salt, base64 encoded. The
// timestamp participates in the signature but travels as a header.
type GatewayClient struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Salt      string

	// now is swappable for tests.
	now func() time.Time
}

func NewGatewayClient(baseURL, apiKey, apiSecret, salt string) *GatewayClient {
	return &GatewayClient{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Salt:      salt,
		now:       time.Now,
	}
}

type PayinRequest struct {
	OrderID       string
	AmountInr     float64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type PayinResult struct {
	GatewayTxnID string
	RedirectURL  string
}

// CreatePayin starts a payin session and returns the redirect/deeplink URL
// the front-end sends the customer to. No money has moved when this
// returns; crediting waits for the webhook.
func (c *GatewayClient) CreatePayin(ctx context.Context, req PayinRequest) (*PayinResult, error) {
	body := map[string]interface{}{
		"order_id":       req.OrderID,
		"amount":         strconv.FormatFloat(req.AmountInr, 'f', 2, 64),
		"currency":       "INR",
		"customer_name":  common.SanitizeCustomerField(req.CustomerName),
		"customer_email": common.SanitizeCustomerField(req.CustomerEmail),
		"customer_phone": common.SanitizeCustomerField(req.CustomerPhone),
	}

	status, resp, err := c.post(ctx, "/v1/payin", body)
	if err != nil {
		return nil, networkError(err)
	}
	if status < 200 || status >= 300 {
		msg, _ := resp["message"].(string)
		return nil, mapRemoteStatus(status, msg)
	}

	txnID, _ := resp["transaction_id"].(string)
	redirect, _ := resp["redirect_url"].(string)
	if redirect == "" {
		return nil, &RemoteError{Kind: ErrRemoteRejected, Status: status, Message: "response missing redirect_url"}
	}

	return &PayinResult{GatewayTxnID: txnID, RedirectURL: redirect}, nil
}

type PayoutRequest struct {
	OrderID            string
	Amount             float64
	BeneficiaryName    string
	BeneficiaryAccount string
	BeneficiaryIFSC    string
}

type PayoutResult struct {
	GatewayTxnID string
}

// CreatePayout submits a withdrawal transfer. A 2xx means the gateway has
// accepted the transfer; later asynchronous failures are tracking-only.
func (c *GatewayClient) CreatePayout(ctx context.Context, req PayoutRequest) (*PayoutResult, error) {
	body := map[string]interface{}{
		"order_id": req.OrderID,
		"amount":   strconv.FormatFloat(req.Amount, 'f', 2, 64),
		"currency": "INR",
		"beneficiary": map[string]interface{}{
			"name":           common.SanitizeCustomerField(req.BeneficiaryName),
			"account_number": req.BeneficiaryAccount,
			"ifsc":           req.BeneficiaryIFSC,
		},
	}

	status, resp, err := c.post(ctx, "/v1/payout", body)
	if err != nil {
		return nil, networkError(err)
	}
	if status < 200 || status >= 300 {
		msg, _ := resp["message"].(string)
		return nil, mapRemoteStatus(status, msg)
	}

	txnID, _ := resp["transaction_id"].(string)
	return &PayoutResult{GatewayTxnID: txnID}, nil
}

func (c *GatewayClient) post(ctx context.Context, path string, body map[string]interface{}) (int, map[string]interface{}, error) {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	// The timestamp is folded into the signed payload only; the request
	// body on the wire does not carry it.
	signed := make(map[string]interface{}, len(body)+1)
	for k, v := range body {
		signed[k] = v
	}
	signed["timestamp"] = timestamp

	signature, err := common.SignCanonicalBase64(signed, c.APISecret, c.Salt)
	if err != nil {
		return 0, nil, err
	}

	headers := map[string]string{
		"X-Api-Key":   c.APIKey,
		"X-Timestamp": timestamp,
		"X-Signature": signature,
	}
	return common.PostJSON(ctx, fmt.Sprintf("%s%s", c.BaseURL, path), body, headers)
}
