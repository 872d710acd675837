package api

import (
	"adminctl/app/config"
	"adminctl/app/service/session"
	"adminctl/app/util/telemetry"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.szostok.io/version"
)

const maxBodySize = 32 << 20

// TokenSource provides the bearer token and ends the session when the
// backend rejects it.
type TokenSource interface {
	Token() string
	Invalidate() error
}

type File struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Form is a multipart payload. Array fields are sent once per value.
type Form struct {
	Fields url.Values
	Files  []File
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	// JSON body, ignored when Form is set
	Body   any
	Form   *Form
	Header http.Header
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	tracing    *telemetry.Tracing
	metrics    *telemetry.Metrics
	userAgent  string

	retryAttempts int
	retryDelay    time.Duration
}

func New(di *do.Injector) (*Client, error) {
	return NewClient(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*session.Store](di),
		do.MustInvoke[*telemetry.Tracing](di),
		do.MustInvoke[*telemetry.Metrics](di),
	)
}

func NewClient(cfg *config.Config, tokens TokenSource, tracing *telemetry.Tracing, metrics *telemetry.Metrics) (*Client, error) {
	rawURL := cfg.BaseURL
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}

	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, oops.Errorf("failed to parse base url: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.HTTP.Timeout) * time.Second,
		},
		tokens:        tokens,
		tracing:       tracing,
		metrics:       metrics,
		userAgent:     "adminctl/" + version.Get().Version,
		retryAttempts: cfg.HTTP.RetryAttempts,
		retryDelay:    time.Duration(cfg.HTTP.RetryDelay) * time.Millisecond,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) PostForm(ctx context.Context, path string, form *Form) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do sends req and unwraps the envelope. GET requests are retried on
// transport errors and 5xx responses; other methods are sent once.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope, error) {
	ctx, span := c.tracing.StartClientSpan(ctx, req.Method, req.Path)
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("method", req.Method))
	c.metrics.Requests.Add(ctx, 1, attrs)

	var env *Envelope
	send := func() error {
		var sendErr error
		env, sendErr = c.send(ctx, req)

		return sendErr
	}

	var err error
	if req.Method == http.MethodGet && c.retryAttempts > 1 && req.Form == nil {
		err = retry.Do(send,
			retry.Context(ctx),
			retry.Attempts(uint(c.retryAttempts)),
			retry.Delay(c.retryDelay),
			retry.MaxJitter(c.retryDelay),
			retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
			retry.RetryIf(func(err error) bool {
				return ctx.Err() == nil && isRetryable(err)
			}),
			retry.OnRetry(func(n uint, err error) {
				slog.DebugContext(ctx, "Retrying request",
					slog.String("path", req.Path),
					slog.Uint64("attempt", uint64(n+1)),
					slog.Any("error", err),
				)
			}),
			retry.LastErrorOnly(true),
		)
	} else {
		err = send()
	}

	if err != nil {
		c.metrics.RequestErrors.Add(ctx, 1, attrs)
		return nil, c.tracing.Error(span, err)
	}

	c.tracing.Success(span)

	return env, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}

	return StatusCode(err) >= http.StatusInternalServerError
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", oops.With("path", path).Errorf("invalid request path: %w", err)
	}

	target := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	return target.String(), nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	var contentType string

	switch {
	case req.Form != nil:
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		if err := writeForm(writer, req.Form); err != nil {
			return nil, oops.Errorf("failed to build multipart body: %w", err)
		}
		body = buf
		contentType = writer.FormDataContentType()
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, oops.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json;charset=utf-8"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, oops.Errorf("http.NewRequestWithContext: %w", err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	if token := c.tokens.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

func writeForm(writer *multipart.Writer, form *Form) error {
	for field, values := range form.Fields {
		for _, value := range values {
			if err := writer.WriteField(field, value); err != nil {
				return err
			}
		}
	}

	for _, file := range form.Files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return err
		}
	}

	return writer.Close()
}

func (c *Client) send(ctx context.Context, req Request) (*Envelope, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, oops.Errorf("request canceled: %w", ctx.Err())
		}

		return nil, networkError(req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, networkError(req.Method, req.Path, err)
	}

	return c.parse(resp.StatusCode, data)
}

func (c *Client) parse(httpStatus int, data []byte) (*Envelope, error) {
	var env Envelope
	decodeErr := errors.New("empty body")
	if len(bytes.TrimSpace(data)) > 0 {
		decodeErr = json.Unmarshal(data, &env)
	}

	// only the transport status ends the session, an envelope code alone does not
	if httpStatus == http.StatusUnauthorized {
		return nil, c.unauthorized(env.Message)
	}

	if httpStatus < 200 || httpStatus >= 300 {
		message := StatusMessage(httpStatus)
		var fields map[string][]string
		if decodeErr == nil {
			if env.Message != "" {
				message = env.Message
			}
			fields = env.FieldErrors()
		}

		return nil, newError(ErrAPI, httpStatus, message, fields)
	}

	if decodeErr != nil {
		return nil, newError(ErrAPI, httpStatus, MsgErrorInResponse, nil)
	}

	if !env.Success() {
		message := env.Message
		if message == "" {
			message = MsgUnknownAPIError
		}

		return nil, newError(ErrAPI, env.StatusCode, message, env.FieldErrors())
	}

	return &env, nil
}

func (c *Client) unauthorized(serverMessage string) error {
	if err := c.tokens.Invalidate(); err != nil {
		slog.Error("Failed to clear session after 401",
			slog.Any("error", err),
		)
	}

	message := serverMessage
	if message == "" {
		message = MsgUnauthorized
	}

	return newError(ErrUnauthorized, http.StatusUnauthorized, message, nil)
}

// Download streams a non-envelope response (exported files) into w and
// returns the response content type.
func (c *Client) Download(ctx context.Context, path string, query url.Values, accept string, w io.Writer) (string, error) {
	ctx, span := c.tracing.StartClientSpan(ctx, http.MethodGet, path)
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("method", "DOWNLOAD"))
	c.metrics.Requests.Add(ctx, 1, attrs)

	header := http.Header{}
	header.Set("Accept", accept)

	httpReq, err := c.newRequest(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Header: header})
	if err != nil {
		return "", c.tracing.Error(span, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RequestErrors.Add(ctx, 1, attrs)
		return "", c.tracing.Error(span, networkError(http.MethodGet, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		_, err := c.parse(resp.StatusCode, data)
		if err == nil {
			err = newError(ErrAPI, resp.StatusCode, StatusMessage(resp.StatusCode), nil)
		}
		c.metrics.RequestErrors.Add(ctx, 1, attrs)

		return "", c.tracing.Error(span, err)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", c.tracing.Error(span, networkError(http.MethodGet, path, err))
	}

	c.tracing.Success(span)

	return resp.Header.Get("Content-Type"), nil
}
