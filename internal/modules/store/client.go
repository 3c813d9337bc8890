package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/storenetdev/storenet-backend/internal/apperr"
)

// Client is the HTTP adapter for calling a store node in another process. It
// implements Remote. Every call is bounded by the client timeout; a timeout
// or transport failure surfaces as ErrStoreUnavailable rather than hanging.
//
// A remote purchase is at-most-once and not idempotent: if the response is
// lost after the remote store committed, this side cannot detect or roll
// back the committed purchase. Known limitation, kept by design of the
// protocol.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a peer-store client. baseURL is the node's route prefix,
// e.g. "http://bc-host:8080/api/v1/stores/BC".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultPeerTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) RequestRemotePurchase(ctx context.Context, customerID, itemID, date string, budgetRemaining float64) (PurchaseResult, error) {
	payload := map[string]interface{}{
		"customer_id":      customerID,
		"item_id":          itemID,
		"date":             date,
		"budget_remaining": budgetRemaining,
	}
	var result PurchaseResult
	if err := c.post(ctx, "/remote/purchases", payload, &result); err != nil {
		return PurchaseResult{}, err
	}
	return result, nil
}

func (c *Client) RequestRemoteItemLookup(ctx context.Context, itemName string) (string, error) {
	var body reportResponse
	path := "/remote/items/search?name=" + url.QueryEscape(itemName)
	if err := c.get(ctx, path, &body); err != nil {
		return "", err
	}
	return body.Report, nil
}

func (c *Client) RequestRemoteReturn(ctx context.Context, customerID, itemID, date string) (bool, error) {
	payload := map[string]interface{}{
		"customer_id": customerID,
		"item_id":     itemID,
		"date":        date,
	}
	var body struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.post(ctx, "/remote/returns", payload, &body); err != nil {
		return false, err
	}
	return body.Accepted, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(apperr.ErrStoreUnavailable, "call %s: %v", req.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(sentinelFor(resp.StatusCode),
			"store at %s answered %d: %s", c.baseURL, resp.StatusCode, readError(resp.Body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// sentinelFor inverts the handler's error-to-status mapping so callers can
// classify remote failures with errors.Is. 5xx and anything unrecognized mean
// the peer could not serve the call.
func sentinelFor(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return apperr.ErrUnauthorized
	case http.StatusBadRequest:
		return apperr.ErrValidation
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusUnprocessableEntity:
		return apperr.ErrPolicyDenied
	default:
		return apperr.ErrStoreUnavailable
	}
}

func readError(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error == "" {
		return "unknown error"
	}
	return body.Error
}
