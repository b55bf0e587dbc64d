// Package payment defines the narrow contract with the external
// payment collaborator.  The core hands over a finalized intent
// (amount, currency, reference) and only cares about success or
// failure: success drives held→confirmed, a decline drives
// held→payment_failed, and transport errors surface as upstream
// failures that are never silently swallowed.
package payment

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "time"
)

// ErrDeclined is returned when the gateway processed the charge and
// rejected it.  Distinct from transport errors so callers can mark
// the hold payment_failed instead of returning a 502.
var ErrDeclined = errors.New("payment declined")

// Intent is the finalized charge payload.  Reference doubles as the
// idempotency key: retrying the same reference must not double
// charge.
type Intent struct {
    AmountCents int64  `json:"amount_cents"`
    Currency    string `json:"currency"`
    Reference   string `json:"reference"`
}

// Charger is the collaborator contract consumed by the booking flow.
type Charger interface {
    Charge(ctx context.Context, in Intent) error
}

// Client talks to the payment gateway over HTTP.  The gateway is
// expected to answer POST {base}/charges with 2xx on success and 402
// on decline; anything else is an upstream failure.
type Client struct {
    BaseURL string
    APIKey  string
    HTTP    *http.Client
}

// NewClient builds a gateway client with a bounded request timeout.
func NewClient(baseURL, apiKey string) *Client {
    return &Client{
        BaseURL: baseURL,
        APIKey:  apiKey,
        HTTP:    &http.Client{Timeout: 15 * time.Second},
    }
}

// Charge submits the intent to the gateway.  The reference makes the
// call idempotent on the gateway side, so a network retry after an
// ambiguous failure cannot double charge.
func (c *Client) Charge(ctx context.Context, in Intent) error {
    body, err := json.Marshal(in)
    if err != nil {
        return err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/charges", bytes.NewReader(body))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+c.APIKey)
    req.Header.Set("Idempotency-Key", in.Reference)

    resp, err := c.HTTP.Do(req)
    if err != nil {
        return fmt.Errorf("payment gateway unreachable: %w", err)
    }
    defer resp.Body.Close()

    switch {
    case resp.StatusCode >= 200 && resp.StatusCode < 300:
        return nil
    case resp.StatusCode == http.StatusPaymentRequired:
        return ErrDeclined
    default:
        return fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
    }
}
