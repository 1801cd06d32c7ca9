package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the checkout signature over "orderID|paymentID" with the
// gateway secret, hex encoded. This mirrors the hosted gateway's convention
// and exists for tests and local sanity checks only.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(orderID))
	_, _ = mac.Write([]byte{'|'})
	_, _ = mac.Write([]byte(paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the callback tuple carries a signature
// matching the given secret. Constant-time comparison.
func VerifySignature(secret string, cb Callback) bool {
	expected := Sign(secret, cb.GatewayOrderID, cb.GatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(cb.GatewaySignature))
}
