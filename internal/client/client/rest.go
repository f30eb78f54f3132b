package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
)

// RESTClient is the HTTP transport for the domain layer. It is safe for
// concurrent use.
type RESTClient struct {
	httpclient *http.Client
	api        *url.URL
	logger     logging.Logger
}

// NewRESTClient builds a client for the server at baseURL. timeout bounds
// every request; zero means no limit.
func NewRESTClient(baseURL string, timeout time.Duration, logger logging.Logger) (*RESTClient, error) {
	api, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if api.Scheme == "" || api.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: scheme and host are required", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &RESTClient{
		httpclient: &http.Client{Timeout: timeout, Jar: jar},
		api:        api,
		logger:     logger,
	}, nil
}

func (c *RESTClient) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post sends body as JSON. A nil body sends an empty request body.
func (c *RESTClient) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *RESTClient) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SessionToken returns the current XSRF-TOKEN cookie value, or "".
func (c *RESTClient) SessionToken() string {
	for _, cookie := range c.httpclient.Jar.Cookies(c.api) {
		if cookie.Name == common.XSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

// SetSessionToken restores a session saved by an earlier run.
func (c *RESTClient) SetSessionToken(token string) {
	c.httpclient.Jar.SetCookies(c.api, []*http.Cookie{{
		Name:  common.XSRFCookieName,
		Value: token,
		Path:  "/",
	}})
}

// ClearSession forgets the session cookie.
func (c *RESTClient) ClearSession() {
	c.httpclient.Jar.SetCookies(c.api, []*http.Cookie{{
		Name:   common.XSRFCookieName,
		Path:   "/",
		MaxAge: -1,
	}})
}

func (c *RESTClient) apipath(path string) *url.URL {
	return c.api.JoinPath(path)
}

func (c *RESTClient) do(ctx context.Context, method, path string, params url.Values, body any) (json.RawMessage, error) {
	u := c.apipath(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.SessionToken(); token != "" {
		req.Header.Set(common.XSRFHeaderName, token)
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return nil, &domain.TransportError{Message: err.Error(), Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Status: resp.StatusCode, Message: "cannot read response: " + err.Error(), Err: err}
	}
	c.logger.Debug(ctx, "api call", "method", method, "path", path, "status", resp.StatusCode)

	return unmarshalEnvelope(resp.StatusCode, raw)
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// unmarshalEnvelope unwraps a success envelope or converts a rejection into
// a classified *domain.TransportError.
func unmarshalEnvelope(code int, body []byte) (json.RawMessage, error) {
	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if StatusCodeRangeOf(code) == Status2xx {
		if decodeErr != nil {
			return nil, &domain.TransportError{Status: code, Message: "malformed response: " + decodeErr.Error(), Err: decodeErr}
		}
		if env.Status != common.StatusSuccess {
			return nil, domain.ClassifyServerError(code, errorMessage(code, env, body))
		}
		if len(env.Data) == 0 {
			return json.RawMessage("null"), nil
		}
		return env.Data, nil
	}

	if decodeErr != nil {
		env = envelope{}
	}
	return nil, domain.ClassifyServerError(code, errorMessage(code, env, body))
}

func errorMessage(code int, env envelope, body []byte) string {
	if env.Message != "" {
		return env.Message
	}
	if env.Status == "" {
		if text := strings.TrimSpace(string(body)); text != "" {
			return text
		}
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return StatusCodeRangeOf(code).String()
}
