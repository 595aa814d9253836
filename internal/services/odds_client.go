package services

import (
	"context"
	"encoding/json"
	"fmt"

	"prediction-wallet-service/pkg/common"
)

// OddsClient talks to the external oddsmaking API. The remote call is not
// idempotent: there is no client-supplied dedup key, so a retry after a
// timeout can double-submit. Callers must not retry blindly.
type OddsClient struct {
	BaseURL string
	APIKey  string
}

func NewOddsClient(baseURL, apiKey string) *OddsClient {
	return &OddsClient{BaseURL: baseURL, APIKey: apiKey}
}

type PlaceWagerRequest struct {
	MarketID   string  `json:"marketId"`
	Selection  string  `json:"selection"`
	Stake      float64 `json:"stake"`
	AccountRef string  `json:"accountRef"`
}

type PlaceWagerResult struct {
	WagerID string
	Status  string
	OddsYes float64
	OddsNo  float64
}

// PlaceWager submits the wager with an HMAC-SHA256 body signature. Non-2xx
// statuses map onto the failure taxonomy; transport errors (including
// timeouts) map to ErrRemoteUnavailable.
func (c *OddsClient) PlaceWager(ctx context.Context, req PlaceWagerRequest) (*PlaceWagerResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"X-Signature": common.SignBodyHex(body, c.APIKey),
	}

	status, resp, err := common.PostJSON(ctx, fmt.Sprintf("%s/wager", c.BaseURL), req, headers)
	if err != nil {
		return nil, networkError(err)
	}
	if status < 200 || status >= 300 {
		msg, _ := resp["message"].(string)
		return nil, mapRemoteStatus(status, msg)
	}

	wagerID, _ := resp["wagerId"].(string)
	if wagerID == "" {
		return nil, &RemoteError{Kind: ErrRemoteRejected, Status: status, Message: "response missing wagerId"}
	}
	wagerStatus, _ := resp["status"].(string)

	// Missing odds fall back to 1 so the potential-win math stays defined.
	oddsYes, oddsNo := 1.0, 1.0
	if odds, ok := resp["odds"].(map[string]interface{}); ok {
		if v, ok := odds["yes"].(float64); ok && v > 0 {
			oddsYes = v
		}
		if v, ok := odds["no"].(float64); ok && v > 0 {
			oddsNo = v
		}
	}

	return &PlaceWagerResult{
		WagerID: wagerID,
		Status:  wagerStatus,
		OddsYes: oddsYes,
		OddsNo:  oddsNo,
	}, nil
}
