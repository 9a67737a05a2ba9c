// Package client talks to the CropCart API on behalf of a signed-in farmer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"cropcart/internal/analytics"
	"cropcart/internal/model"
	"cropcart/internal/orders"
)

var (
	ErrAlreadyFulfilled = errors.New("order already fulfilled")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
)

// APIError is a non-2xx answer from the API. It matches the sentinel errors
// above by error code, so callers can use errors.Is.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAlreadyFulfilled:
		return e.Code == "ORDER_ALREADY_FULFILLED"
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL string
	client  *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

type AuthResult struct {
	Token       string      `json:"token"`
	User        *model.User `json:"user"`
	MemberSince *time.Time  `json:"member_since,omitempty"`
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

func (c *Client) FarmerCrops(ctx context.Context) ([]model.Crop, error) {
	var crops []model.Crop
	if err := c.do(ctx, http.MethodGet, "/api/farmer/crops", nil, &crops); err != nil {
		return nil, err
	}
	return crops, nil
}

func (c *Client) FarmerOrders(ctx context.Context) ([]orders.FarmerOrder, error) {
	var list []orders.FarmerOrder
	if err := c.do(ctx, http.MethodGet, "/api/farmer/orders", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

type Analytics struct {
	View   analytics.ViewMode `json:"view"`
	Series analytics.Series   `json:"series"`
	analytics.Snapshot
}

func (c *Client) Analytics(ctx context.Context, mode analytics.ViewMode) (*Analytics, error) {
	var res Analytics
	path := "/api/farmer/analytics?view=" + url.QueryEscape(string(mode))
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Fulfill asks the server to mark the order fulfilled. An order fulfilled by
// someone else yields an error matching ErrAlreadyFulfilled.
func (c *Client) Fulfill(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(orderID)+"/fulfill", nil, nil)
}

// Report streams the PDF report for the given view into w.
func (c *Client) Report(ctx context.Context, mode analytics.ViewMode, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/farmer/report?view="+url.QueryEscape(string(mode)), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("copy report: %w", err)
	}
	return nil
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *envelopeError  `json:"error"`
	RequestID string          `json:"request_id"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
		return nil
	default:
		return decodeError(resp)
	}
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(resp.Body)

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.RequestID = env.RequestID
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}
