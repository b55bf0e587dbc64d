package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeSuccess(t *testing.T) {
	var gotIdempotency string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/charges", r.URL.Path)
		gotIdempotency = r.Header.Get("Idempotency-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	err := c.Charge(context.Background(), Intent{AmountCents: 27000, Currency: "USD", Reference: "bk-123"})
	assert.NoError(t, err)
	assert.Equal(t, "bk-123", gotIdempotency, "reference doubles as the idempotency key")
}

func TestChargeDeclinedIsDistinctFromUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	err := c.Charge(context.Background(), Intent{AmountCents: 100, Currency: "USD", Reference: "bk-1"})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestChargeGatewayErrorIsNotDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	err := c.Charge(context.Background(), Intent{AmountCents: 100, Currency: "USD", Reference: "bk-2"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)
}
