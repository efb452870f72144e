package onchain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetTransactionNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TransactionResponse{Result: nil, ID: 1})
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL, srv.Client())
	result, err := client.GetTransaction(context.Background(), "sig")
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestGetBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(BalanceResponse{Result: &BalanceResult{Value: 2_500_000_000}, ID: 1})
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL, srv.Client())
	balance, err := client.GetBalance(context.Background(), "wallet")
	require.NoError(t, err)
	require.Equal(t, uint64(2_500_000_000), balance)
}

func TestUiTokenAmountToFloat64(t *testing.T) {
	amt := UiTokenAmount{Decimals: 6, Amount: "1000000"}
	require.Equal(t, 1.0, amt.ToFloat64())

	bad := UiTokenAmount{Decimals: 6, Amount: "not-a-number"}
	require.Equal(t, 0.0, bad.ToFloat64())
}
