// Package apiclient talks to the e-commerce REST API. It is the only place
// that looks at HTTP status codes; everything it returns is either decoded
// data or an *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/nexstore/storefront/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseBody = 1 << 20 // 1MB

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[response]
	logger  *zap.Logger
}

type response struct {
	status int
	body   []byte
}

// errUpstream marks 5xx answers so the breaker counts them.
var errUpstream = errors.New("upstream server error")

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)
}

func NewClientWithHTTP(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		cb:      circuitbreaker.New[response](circuitbreaker.DefaultSettings("ecommerce-api"), logger),
		logger:  logger,
	}
}

type request struct {
	method      string
	path        string
	token       string
	body        []byte
	contentType string
	headers     map[string]string
}

func jsonRequest(method, path, token string, payload any) (request, error) {
	req := request{method: method, path: path, token: token}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("marshal request body: %w", err)
		}
		req.body = body
		req.contentType = "application/json"
	}
	return req, nil
}

// call performs req and decodes a 2xx body into out (when out is non-nil).
// Non-2xx answers become *Error.
func (c *Client) call(ctx context.Context, req request, out any) error {
	res, err := c.cb.Execute(func() (response, error) {
		return c.roundTrip(ctx, req)
	})
	if err != nil {
		c.logger.Warn("api call failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", res.status),
			zap.Error(err),
		)
		return transportError(res.status, err)
	}

	if res.status >= 200 && res.status < 300 {
		if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(res.body, out); err != nil {
			return transportError(res.status, fmt.Errorf("decode %s %s: %w", req.method, req.path, err))
		}
		return nil
	}

	apiErr := decodeError(res.status, res.body)
	c.logger.Debug("api call refused",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", res.status),
		zap.String("kind", apiErr.Kind.String()),
		zap.String("message", apiErr.Message),
	)
	return apiErr
}

func (c *Client) roundTrip(ctx context.Context, req request) (response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		httpReq.Header.Set("X-Request-ID", reqID)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	httpRes, err := c.http.Do(httpReq)
	if err != nil {
		return response{}, err
	}
	defer httpRes.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpRes.Body, maxResponseBody))
	if err != nil {
		return response{status: httpRes.StatusCode}, fmt.Errorf("read body: %w", err)
	}

	res := response{status: httpRes.StatusCode, body: data}
	if httpRes.StatusCode >= 500 {
		return res, fmt.Errorf("%w: status %d", errUpstream, httpRes.StatusCode)
	}
	return res, nil
}

type validationDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

func decodeError(status int, body []byte) *Error {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	decodeErr := json.Unmarshal(body, &envelope)

	// the session is gone whatever the body says
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &Error{Kind: KindUnauthorized, Status: status, Message: detailString(envelope.Detail)}
	}
	if decodeErr != nil {
		return transportError(status, fmt.Errorf("non-JSON error body: %w", decodeErr))
	}

	switch {
	case status == http.StatusUnprocessableEntity:
		var details []validationDetail
		if err := json.Unmarshal(envelope.Detail, &details); err != nil {
			return &Error{Kind: KindValidation, Status: status, Message: detailString(envelope.Detail)}
		}
		fields := make(map[string]string, len(details))
		for _, d := range details {
			if len(d.Loc) == 0 {
				continue
			}
			fields[fmt.Sprint(d.Loc[len(d.Loc)-1])] = d.Msg
		}
		return &Error{Kind: KindValidation, Status: status, Message: "Invalid fields", Fields: fields}

	default:
		return &Error{Kind: KindRejected, Status: status, Message: detailString(envelope.Detail)}
	}
}

func detailString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return GenericMessage
}
