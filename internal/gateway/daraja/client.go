package daraja

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const requestTimeout = 30 * time.Second

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"
)

// Config carries everything the gateway needs; it is built once at startup
// and injected, never read from ambient globals.
type Config struct {
	ConsumerKey        string
	ConsumerSecret     string
	ShortCode          string
	Passkey            string
	CallbackURL        string
	Environment        string // "sandbox" or "production"
	InitiatorName      string
	SecurityCredential string
	BaseURL            string // public base for result/timeout URLs of async ops
}

// TokenCache is an optional short-lived store for OAuth tokens. Get returns
// ("", nil) on a miss; a nil cache means every call exchanges credentials
// fresh, which is the provider-documented baseline behavior.
type TokenCache interface {
	Get(ctx context.Context) (string, error)
	Put(ctx context.Context, token string) error
}

type Client struct {
	cfg    Config
	base   string
	httpc  *http.Client
	tokens TokenCache
	now    func() time.Time
}

func New(cfg Config, tokens TokenCache) *Client {
	base := sandboxBaseURL
	if cfg.Environment == "production" {
		base = productionBaseURL
	}
	return &Client{
		cfg:    cfg,
		base:   base,
		httpc:  &http.Client{Timeout: requestTimeout},
		tokens: tokens,
		now:    time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// AccessToken exchanges the configured consumer key/secret for a bearer token.
// A cached token is used when available; cache write failures are ignored.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.tokens != nil {
		if tok, err := c.tokens.Get(ctx); err == nil && tok != "" {
			return tok, nil
		}
	}

	url := c.base + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("%w: bad token response", ErrAuth)
	}
	if c.tokens != nil {
		_ = c.tokens.Put(ctx, tr.AccessToken)
	}
	return tr.AccessToken, nil
}

type STKPushResult struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// InitiateSTKPush asks the provider to prompt the payer's device. phone must
// already be in 254XXXXXXXXX form. The returned CheckoutRequestID is the
// correlation id echoed by the asynchronous result callback.
func (c *Client) InitiateSTKPush(ctx context.Context, phone string, amount int64, accountRef, desc string) (*STKPushResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := stkTimestamp(c.now().UTC())
	payload := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          stkPassword(c.cfg.ShortCode, c.cfg.Passkey, ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   desc,
	}

	var out STKPushResult
	if err := c.postJSON(ctx, token, "/mpesa/stkpush/v1/processrequest", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// postJSON posts an authenticated JSON payload and decodes a 2xx body into
// out. Non-2xx bodies become *RejectedError; transport failures are
// classified as timeout or network errors.
func (c *Client) postJSON(ctx context.Context, token, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rej := &RejectedError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, rej)
		return rej
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: bad response body: %v", ErrNetwork, err)
	}
	return nil
}

func classifyTransportErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
