package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/common"
	"github.com/dmitrijs2005/grocerycompare/internal/logging"
)

const DefaultTimeout = 30 * time.Second

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	metrics        *Metrics
	log            logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (and its timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.httpClient = c }
}

func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.httpClient.Timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(h *HTTPClient) { h.tokens = ts }
}

func WithUnauthorizedHandler(fn UnauthorizedHandler) Option {
	return func(h *HTTPClient) { h.onUnauthorized = fn }
}

func WithMetrics(m *Metrics) Option {
	return func(h *HTTPClient) { h.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// call describes one backend request.
type call struct {
	endpoint string // metrics and log label
	method   string
	path     string
	query    url.Values
	body     any
	anon     bool // do not attach the bearer token
	fallback string
}

type errorBody struct {
	Error            string `json:"error"`
	AvailableRecords *int   `json:"available_records"`
}

func (h *HTTPClient) do(ctx context.Context, c call, dest any) error {
	var payload io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.endpoint, err)
		}
		payload = bytes.NewReader(b)
	}

	u := h.baseURL + c.path
	if len(c.query) > 0 {
		u += "?" + c.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, c.method, u, payload)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.endpoint, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	bound, isBound := BearerFromContext(ctx)
	if !c.anon {
		token := bound
		if !isBound && h.tokens != nil {
			token = h.tokens.Token()
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	log := h.log.With("endpoint", c.endpoint, "request_id", requestID)

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.metrics.observe(c.endpoint, 0, time.Since(start))
		log.Warn(ctx, "request failed", "error", err)
		return &APIError{Message: c.fallback, kind: ErrUnavailable, cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	h.metrics.observe(c.endpoint, resp.StatusCode, time.Since(start))
	log.Debug(ctx, "request finished", "status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: c.fallback, kind: ErrUnavailable, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && h.onUnauthorized != nil && !isBound {
			h.onUnauthorized(ctx)
		}

		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: c.fallback,
			kind:    kindForStatus(resp.StatusCode),
		}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			if eb.Error != "" {
				apiErr.Message = eb.Error
			}
			apiErr.AvailableRecords = eb.AvailableRecords
		}
		return apiErr
	}

	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return &APIError{Status: resp.StatusCode, Message: c.fallback, cause: fmt.Errorf("decode %s response: %w", c.endpoint, err)}
	}
	return nil
}

func (h *HTTPClient) Signup(ctx context.Context, r models.SignupRequest) (*models.AuthResult, error) {
	var res models.AuthResult
	err := h.do(ctx, call{
		endpoint: "signup", method: http.MethodPost, path: "/auth/signup",
		body: r, anon: true, fallback: MsgSignupFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	err := h.do(ctx, call{
		endpoint: "login", method: http.MethodPost, path: "/auth/login",
		body: creds, anon: true, fallback: MsgLoginFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) Verify(ctx context.Context) (*models.VerifyResult, error) {
	var res models.VerifyResult
	err := h.do(ctx, call{
		endpoint: "verify", method: http.MethodGet, path: "/auth/verify",
		fallback: MsgVerifyFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) Logout(ctx context.Context) error {
	return h.do(ctx, call{
		endpoint: "logout", method: http.MethodPost, path: "/auth/logout",
		fallback: MsgLogoutFailed,
	}, nil)
}

func (h *HTTPClient) Search(ctx context.Context, productName string) (*models.SearchResult, error) {
	var res models.SearchResult
	err := h.do(ctx, call{
		endpoint: "search", method: http.MethodPost, path: "/search",
		body: map[string]string{"product_name": productName}, fallback: MsgSearchFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) Product(ctx context.Context, id int64) (*models.Product, error) {
	var res models.Product
	err := h.do(ctx, call{
		endpoint: "product", method: http.MethodGet, path: "/product/" + strconv.FormatInt(id, 10),
		fallback: MsgProductFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) Predict(ctx context.Context, params models.PredictionParams) (*models.Prediction, error) {
	var res models.Prediction
	err := h.do(ctx, call{
		endpoint: "predict", method: http.MethodPost, path: "/predict",
		body: params, fallback: MsgPredictFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) Suggest(ctx context.Context, query string) ([]models.Suggestion, error) {
	var res models.SuggestionList
	err := h.do(ctx, call{
		endpoint: "suggest", method: http.MethodGet, path: "/products/suggest",
		query: url.Values{"q": {query}}, fallback: MsgSuggestFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Suggestions == nil {
		return []models.Suggestion{}, nil
	}
	return res.Suggestions, nil
}

func (h *HTTPClient) SearchHistory(ctx context.Context) ([]models.SearchHistoryItem, error) {
	var res models.SearchHistory
	err := h.do(ctx, call{
		endpoint: "search_history", method: http.MethodGet, path: "/search-history",
		fallback: MsgHistoryFailed,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.History, nil
}

// Ping calls /health without credentials.
func (h *HTTPClient) Ping(ctx context.Context) error {
	return h.do(ctx, call{
		endpoint: "health", method: http.MethodGet, path: "/health",
		anon: true, fallback: MsgHealthFailed,
	}, nil)
}
