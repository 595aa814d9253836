package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"prediction-wallet-service/pkg/common"

	"github.com/stretchr/testify/assert"
)

func TestCreatePayinSignsCanonicalPayload(t *testing.T) {
	var captured struct {
		body      map[string]interface{}
		signature string
		timestamp string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &captured.body)
		captured.signature = r.Header.Get("X-Signature")
		captured.timestamp = r.Header.Get("X-Timestamp")
		json.NewEncoder(w).Encode(map[string]string{
			"transaction_id": "gtxn-1",
			"redirect_url":   "https://pg.example.in/pay/x",
		})
	}))
	defer server.Close()

	client := NewGatewayClient(server.URL, "api-key", "api-secret", "salt")
	_, err := client.CreatePayin(t.Context(), PayinRequest{
		OrderID:       "PW1ABCDEF",
		AmountInr:     118,
		CustomerName:  "Asha <Rao>",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+91 1234567890",
	})
	if err != nil {
		t.Fatalf("CreatePayin failed: %v", err)
	}

	// Sanitization strips characters the gateway rejects.
	assert.Equal(t, "Asha Rao", captured.body["customer_name"])
	assert.Equal(t, "118.00", captured.body["amount"], "amount travels as a fixed-point string")

	// The timestamp is signed but not part of the wire body.
	assert.NotContains(t, captured.body, "timestamp")
	assert.NotEmpty(t, captured.timestamp)

	signed := make(map[string]interface{}, len(captured.body)+1)
	for k, v := range captured.body {
		signed[k] = v
	}
	signed["timestamp"] = captured.timestamp
	assert.True(t, common.VerifyCanonicalBase64(signed, "api-secret", "salt", captured.signature),
		"signature must verify against body + timestamp header")
}

func TestGatewayStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrSignatureInvalid},
		{http.StatusNotFound, ErrMarketNotFound},
		{http.StatusUnprocessableEntity, ErrInvalidRequest},
		{http.StatusInternalServerError, ErrRemoteRejected},
		{http.StatusBadGateway, ErrRemoteRejected},
	}

	for _, tc := range cases {
		server := failingGateway(tc.status)
		client := NewGatewayClient(server.URL, "api-key", "api-secret", "salt")
		_, err := client.CreatePayout(t.Context(), PayoutRequest{
			OrderID: "PW1", Amount: 10,
			BeneficiaryName: "A", BeneficiaryAccount: "1", BeneficiaryIFSC: "X",
		})
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)

		var remote *RemoteError
		if assert.ErrorAs(t, err, &remote) {
			assert.Equal(t, tc.status, remote.Status)
		}
		server.Close()
	}
}

func TestGatewayNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewGatewayClient(server.URL, "api-key", "api-secret", "salt")
	_, err := client.CreatePayin(t.Context(), PayinRequest{OrderID: "PW1", AmountInr: 10})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}
