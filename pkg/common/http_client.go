package common

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// PostJSON sends a JSON POST and returns the HTTP status plus the decoded
// body. A transport-level failure returns err != nil; a non-2xx status is
// the caller's to interpret (remote rejection vs. unreachable matters to
// the refund paths).
func PostJSON(ctx context.Context, url string, payload interface{}, headers map[string]string) (int, map[string]interface{}, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	result := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			result = map[string]interface{}{"raw": string(body)}
		}
	}
	return resp.StatusCode, result, nil
}

// GetJSON sends a GET and decodes the JSON response body.
func GetJSON(ctx context.Context, url string, headers map[string]string) (int, map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	result := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			result = map[string]interface{}{"raw": string(body)}
		}
	}
	return resp.StatusCode, result, nil
}
