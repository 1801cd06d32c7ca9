package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignIsDeterministic(t *testing.T) {
	first := Sign("secret", "order-1", "pay-1")
	second := Sign("secret", "order-1", "pay-1")
	require.Equal(t, first, second)
	require.Len(t, first, 64)

	require.NotEqual(t, first, Sign("other-secret", "order-1", "pay-1"))
	require.NotEqual(t, first, Sign("secret", "order-2", "pay-1"))
}

func TestVerifySignature(t *testing.T) {
	cb := Callback{
		GatewayOrderID:   "order-1",
		GatewayPaymentID: "pay-1",
	}
	cb.GatewaySignature = Sign("secret", cb.GatewayOrderID, cb.GatewayPaymentID)
	require.True(t, VerifySignature("secret", cb))

	cb.GatewaySignature = "garbled"
	require.False(t, VerifySignature("secret", cb))
}

func TestCallbackValidate(t *testing.T) {
	cb := Callback{GatewayOrderID: "order-1", GatewayPaymentID: "pay-1", GatewaySignature: "sig"}
	require.NoError(t, cb.Validate())

	require.Error(t, Callback{}.Validate())
	require.Error(t, Callback{GatewayOrderID: "order-1", GatewayPaymentID: "pay-1"}.Validate())
}
