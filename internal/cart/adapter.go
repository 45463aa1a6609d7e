// Package cart submits a finalized selection to the external commerce
// platform's add-to-cart endpoint and interprets its result.
//
// The adapter sends exactly one request per call and never retries: a retry
// could create a duplicate cart line, and the shopper can always press the
// button again with their selection intact.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/models"
)

// Request carries the resolved SKU and the configuration metadata the commerce
// platform persists against the order line. Quantity is fixed at 1 by the
// selector; Nonce is the single-use anti-replay token issued with the session.
type Request struct {
	ProductID     int64
	Quantity      int
	Make          string
	Model         string
	Pack          models.PackType
	BatteryColour models.BatteryColour
	Extras        []string
	UnitPrice     float64
	Nonce         string
}

// Response is the platform's success payload.
type Response struct {
	Message       string `json:"message"`
	CartURL       string `json:"cartUrl"`
	CartItemCount int    `json:"cartItemCount"`
}

// ErrRejected wraps a rejection message returned by the platform (as opposed
// to a transport failure).
var ErrRejected = errors.New("cart request rejected")

// Adapter posts to an admin-ajax style endpoint: form-encoded request, JSON
// envelope response {"success": bool, "data": ...} where data is the payload
// object on success and an error string on failure.
type Adapter struct {
	endpoint string
	client   *http.Client
}

// NewAdapter creates an adapter for the given endpoint. A nil client gets a
// default with a 15s timeout; a hung platform resolves as a failed submission
// rather than a stuck session.
func NewAdapter(endpoint string, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Adapter{endpoint: endpoint, client: client}
}

// ajaxEnvelope mirrors the platform's wp_send_json_* wrapper.
type ajaxEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type ajaxSuccessData struct {
	Message   string `json:"message"`
	CartURL   string `json:"cart_url"`
	CartCount int    `json:"cart_count"`
}

// Submit sends one add-to-cart request. Any transport error, non-2xx status or
// platform rejection comes back as an error; the caller decides whether the
// shopper retries.
func (a *Adapter) Submit(ctx context.Context, req Request) (*Response, error) {
	form := url.Values{}
	form.Set("action", "hv_add_to_cart")
	form.Set("product_id", strconv.FormatInt(req.ProductID, 10))
	form.Set("quantity", strconv.Itoa(req.Quantity))
	form.Set("nonce", req.Nonce)
	form.Set("make", req.Make)
	form.Set("model", req.Model)
	form.Set("pack_type", string(req.Pack))
	form.Set("line_price", strconv.FormatFloat(req.UnitPrice, 'f', 2, 64))
	if req.BatteryColour != "" {
		form.Set("battery_colour", string(req.BatteryColour))
	}
	for i, extra := range req.Extras {
		form.Set(fmt.Sprintf("extras[%d]", i), extra)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cart endpoint returned status %d", resp.StatusCode)
	}

	var envelope ajaxEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed cart response: %w", err)
	}

	if !envelope.Success {
		var msg string
		if err := json.Unmarshal(envelope.Data, &msg); err != nil || msg == "" {
			msg = "failed to add product to cart"
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	var data ajaxSuccessData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("malformed cart response: %w", err)
	}

	return &Response{
		Message:       data.Message,
		CartURL:       data.CartURL,
		CartItemCount: data.CartCount,
	}, nil
}
