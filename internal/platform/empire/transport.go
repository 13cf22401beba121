package empire

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

const defaultTimeout = 30 * time.Second

// maxAttempts bounds the transient-retry stage per request.
const maxAttempts = 3

// Transport sends signed requests to the game API. Every request runs
// through three explicit stages: sign (Api-Time/Api-Hash and, once logged
// in, Api-Key), retry (transient failures only), and decode (content-type
// aware envelope parsing).
type Transport struct {
	baseURL string
	http    *http.Client
	apiKey  string
	logger  *slog.Logger
}

func newTransport(baseURL, proxyURL string, timeout time.Duration, logger *slog.Logger) (*Transport, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpTransport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("empire: parse proxy url: %w", err)
		}
		httpTransport.Proxy = http.ProxyURL(u)
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: httpTransport,
		},
		logger: logger,
	}, nil
}

// SetAPIKey installs the per-account key sent as Api-Key after login.
func (t *Transport) SetAPIKey(key string) {
	t.apiKey = key
}

// envelope is the game API's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Post sends one signed POST and returns the decoded data payload. A nil
// body is sent as an empty JSON object, matching the game client.
func (t *Transport) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	if body == nil {
		body = map[string]any{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("empire: marshal request body: %w", err)
	}

	op := func() (json.RawMessage, error) {
		return t.roundTrip(ctx, path, payload)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1), ctx)
	data, err := backoff.RetryWithData(op, b)
	if err != nil {
		return nil, fmt.Errorf("empire: %s: %w", path, err)
	}
	return data, nil
}

func (t *Transport) roundTrip(ctx context.Context, path string, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	signRequest(req, payload)
	if t.apiKey != "" {
		req.Header.Set("Api-Key", t.apiKey)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err // network failure, retryable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return decodeEnvelope(resp.Header.Get("Content-Type"), respBody)
}

// signRequest applies the game's request signature: md5 over
// "<unix-ts>_<body-json>" carried in Api-Time and Api-Hash.
func signRequest(req *http.Request, payload []byte) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sum := md5.Sum([]byte(ts + "_" + string(payload)))
	req.Header.Set("Api-Time", ts)
	req.Header.Set("Api-Hash", hex.EncodeToString(sum[:]))
}

// checkHTTPStatus maps non-2xx statuses to domain errors. Authorization and
// not-found failures are permanent; rate limiting and server errors are left
// retryable for the backoff stage.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	bodyStr := strings.TrimSpace(string(body))
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr))
	case statusCode == http.StatusNotFound:
		return backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr))
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	case statusCode >= 500:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	default:
		return backoff.Permanent(fmt.Errorf("HTTP %d: %s", statusCode, bodyStr))
	}
}

// decodeEnvelope parses the response by content type and unwraps the game's
// success/error envelope.
func decodeEnvelope(contentType string, body []byte) (json.RawMessage, error) {
	if strings.Contains(string(body), "A new version of the app ha") {
		return nil, backoff.Permanent(domain.ErrOutdatedClient)
	}
	if !strings.Contains(contentType, "application/json") {
		return nil, backoff.Permanent(fmt.Errorf("%w: content type %q", domain.ErrBadResponse, contentType))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrBadResponse, err))
	}
	if env.Error != "" && strings.Contains(env.Error, "take some rest") {
		return nil, backoff.Permanent(domain.ErrTapsExhausted)
	}
	if !env.Success {
		return nil, backoff.Permanent(fmt.Errorf("game error: %s", env.Error))
	}
	return env.Data, nil
}
