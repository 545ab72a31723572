package token

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Transfer(t *testing.T) {
	var got transferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transfers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	err := client.Transfer(context.Background(), "0xfee", 10000)

	require.NoError(t, err)
	assert.Equal(t, "0xfee", got.To)
	assert.Equal(t, int64(10000), got.Amount)
	assert.Empty(t, got.From)
}

func TestHTTPClient_TransferFrom_LedgerRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfers/from", r.URL.Path)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorResponse{Error: "insufficient allowance"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	err := client.TransferFrom(context.Background(), "0xuser", "0xcustody", 500)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient allowance")
}

func TestHTTPClient_BalanceOf(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balances/0xcustody", r.URL.Path)
		json.NewEncoder(w).Encode(balanceResponse{Address: "0xcustody", Balance: 1000000000})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	balance, err := client.BalanceOf(context.Background(), "0xcustody")

	require.NoError(t, err)
	assert.Equal(t, int64(1000000000), balance)
}

func TestHTTPClient_Whitelisted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/whitelist/0xcustody", r.URL.Path)
		json.NewEncoder(w).Encode(whitelistResponse{Address: "0xcustody", Whitelisted: true})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	ok, err := client.Whitelisted(context.Background(), "0xcustody")

	require.NoError(t, err)
	assert.True(t, ok)
}
