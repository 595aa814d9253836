package common

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
)

// CanonicalJSON re-encodes v with every object's keys sorted alphabetically
// at every nesting level. encoding/json already sorts map keys, so a
// round-trip through interface{} canonicalizes arbitrary payloads,
// including ones that arrived as raw bytes.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// SignCanonicalBase64 is the gateway signature: HMAC-SHA256 over the
// canonical JSON of payload, key = apiSecret + salt (secret first),
// base64-encoded.
func SignCanonicalBase64(payload interface{}, apiSecret, salt string) (string, error) {
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(apiSecret+salt))
	mac.Write(canonical)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// SignCanonicalHex is the gateway's alternate hex signature mode.
func SignCanonicalHex(payload interface{}, apiSecret, salt string) (string, error) {
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(apiSecret+salt))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// SignBodyHex signs raw bytes with a plain HMAC-SHA256 hex digest. Used by
// the odds API request signature and the settlement webhook.
func SignBodyHex(body []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyBodyHex checks a hex HMAC signature in constant time.
func VerifyBodyHex(body []byte, key, signature string) bool {
	expected := SignBodyHex(body, key)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyCanonicalBase64 checks the gateway webhook signature against the
// canonicalized payload.
func VerifyCanonicalBase64(payload interface{}, apiSecret, salt, signature string) bool {
	expected, err := SignCanonicalBase64(payload, apiSecret, salt)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}
