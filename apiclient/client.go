package apiclient

import (
	"context"
	"fmt"
	"time"

	"trxflow/models"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Client talks to the v2 API of a running trxflow server.
type Client struct {
	http *resty.Client
}

// Error is a non-2xx reply. Message is the server's envelope message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("trxflow: %d %s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type StatusResult struct {
	TransactionID string                   `json:"transaction_id"`
	Status        models.TransactionStatus `json:"status"`
}

type ReferencePreview struct {
	LastReference *string `json:"last_reference"`
	NextReference string  `json:"next_reference"`
	Message       string  `json:"message"`
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// SetToken authenticates every following request.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) Register(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error) {
	var out envelope[models.User]
	err := c.do(ctx, "POST", "/api/v1/auth/usuarios", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     string(role),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Login posts the password form and returns the bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out envelope[struct {
		AccessToken string `json:"access_token"`
	}]
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"username": email, "password": password}).
		SetResult(&out).
		SetError(&out).
		Post("/api/v1/auth/login")
	if err := check(resp, err, out.Message); err != nil {
		return "", err
	}
	return out.Data.AccessToken, nil
}

func (c *Client) CreateTransaction(ctx context.Context, amount decimal.Decimal, currency string) (*models.Transaction, error) {
	var out envelope[models.Transaction]
	err := c.do(ctx, "POST", "/api/v2/transactions", map[string]interface{}{
		"amount":   amount,
		"currency": currency,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) Submit(ctx context.Context, id string) (*StatusResult, error) {
	return c.transition(ctx, id, "submit")
}

func (c *Client) Approve(ctx context.Context, id string) (*StatusResult, error) {
	return c.transition(ctx, id, "approve")
}

func (c *Client) Reject(ctx context.Context, id string) (*StatusResult, error) {
	return c.transition(ctx, id, "reject")
}

func (c *Client) Execute(ctx context.Context, id string) (*StatusResult, error) {
	return c.transition(ctx, id, "execute")
}

func (c *Client) Get(ctx context.Context, id string) (*models.Transaction, error) {
	var out envelope[models.Transaction]
	if err := c.do(ctx, "GET", "/api/v2/transactions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) PreviewReference(ctx context.Context) (*ReferencePreview, error) {
	var out envelope[ReferencePreview]
	if err := c.do(ctx, "GET", "/api/v2/transactions/next-reference/preview", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) transition(ctx context.Context, id, action string) (*StatusResult, error) {
	var out envelope[StatusResult]
	if err := c.do(ctx, "POST", "/api/v2/transactions/"+id+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{ message() string }) error {
	req := c.http.R().SetContext(ctx).SetResult(out).SetError(out)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	return check(resp, err, out.message())
}

func (e *envelope[T]) message() string {
	return e.Message
}

func check(resp *resty.Response, err error, message string) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		if message == "" {
			message = resp.Status()
		}
		return &Error{StatusCode: resp.StatusCode(), Message: message}
	}
	return nil
}
