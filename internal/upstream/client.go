package upstream

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the production Kazadi SecurePay deployment
const DefaultBaseURL = "https://kazadi-securepay-api-production.up.railway.app"

// Client talks to the Kazadi SecurePay API. Control-plane calls (register,
// login, generate-key) go through resty; the transaction relay uses a plain
// http.Client so bodies stream through untouched.
type Client struct {
	baseURL string
	rest    *resty.Client
	relay   *http.Client
}

// NewClient creates a client for the given base URL.
// An empty baseURL falls back to the production deployment.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		baseURL: baseURL,
		rest:    rest,
		relay: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DisableCompression: true,
			},
		},
	}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type generateKeyBody struct {
	ClientSecret string `json:"clientSecret"`
	Email        string `json:"email"`
}

type generateKeyResponse struct {
	APIKey string `json:"apiKey"`
	Key    string `json:"key"` // some deployments use this field name
	KeyID  string `json:"keyId"`
	Last4  string `json:"last4"`
}

// Register creates an upstream account for an alias identity. Registration
// is idempotent from the caller's point of view: an "already exists"
// rejection is not an error, so only transport failures are reported.
func (c *Client) Register(ctx context.Context, email, password string) error {
	// Conflict responses mean the alias already exists; that is fine, so
	// the status code is not inspected.
	_, err := c.rest.R().
		SetContext(ctx).
		SetBody(credentialsBody{Email: email, Password: password}).
		Post("/api/users/register")
	if err != nil {
		return &Error{Op: "register", Status: 0, Body: err.Error()}
	}
	return nil
}

// Login authenticates an alias identity and returns a short-lived bearer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(credentialsBody{Email: email, Password: password}).
		SetResult(&out).
		Post("/api/users/login")
	if err != nil {
		return "", &Error{Op: "login", Status: 0, Body: err.Error()}
	}
	if !resp.IsSuccess() {
		return "", &Error{Op: "login", Status: resp.StatusCode(), Body: resp.String()}
	}
	token := strings.TrimSpace(out.Token)
	if token == "" {
		return "", &Error{Op: "login", Status: resp.StatusCode(), Body: "no token in response"}
	}
	return token, nil
}

// GenerateKey asks the upstream to mint a new API key. The idempotency token
// is unique per issuance attempt so upstream retries never mint duplicates.
func (c *Client) GenerateKey(ctx context.Context, token, aliasEmail, clientSecret, idemToken string) (*KeyGrant, error) {
	var out generateKeyResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("x-user-email", aliasEmail).
		SetHeader("x-idempotency-key", idemToken).
		SetHeader("x-request-id", idemToken).
		SetBody(generateKeyBody{ClientSecret: clientSecret, Email: aliasEmail}).
		SetResult(&out).
		Post("/api/generate-key")
	if err != nil {
		return nil, &Error{Op: "generate-key", Status: 0, Body: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &Error{Op: "generate-key", Status: resp.StatusCode(), Body: resp.String()}
	}

	apiKey := out.APIKey
	if apiKey == "" {
		apiKey = out.Key
	}
	return &KeyGrant{APIKey: apiKey, KeyID: out.KeyID, Last4: out.Last4}, nil
}

// ForwardTransaction relays a transaction body to the upstream endpoint
// verbatim, carrying only the correlation headers. The caller owns the
// response and must close its body.
func (c *Client) ForwardTransaction(ctx context.Context, body io.Reader, requestID, idemKey string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transaction", body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}
	if idemKey != "" {
		req.Header.Set("x-idempotency-key", idemKey)
	}

	return c.relay.Do(req)
}
