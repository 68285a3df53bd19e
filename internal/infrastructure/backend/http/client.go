package httpbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thanhpk/randstr"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

// ErrNotFound is returned for 404 responses without an error body
var ErrNotFound = domain.NewError(
	domain.ValidationError, "NOT_FOUND", "resource not found",
)

const (
	headerRequestID     = "X-Request-Id"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
)

type client struct {
	*http.Client
	baseURL string
}

func newHTTPClient(baseURL string, requestTimeout time.Duration) *client {
	return &client{
		Client:  &http.Client{Timeout: requestTimeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   interface{}
}

// do sends the request and decodes the JSON response body into out, if not
// nil. Every failure is returned as a *domain.Error.
func (c *client) do(ctx context.Context, req request, out interface{}) error {
	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return domain.ErrInvalidArgument.WithMessage(
				"failed to encode request: %s", err,
			)
		}
		body = bytes.NewReader(buf)
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, req.query.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return domain.ErrInvalidArgument.WithMessage(
			"failed to build request: %s", err,
		)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	httpReq.Header.Set(headerRequestID, randstr.Hex(16))
	if len(req.token) > 0 {
		httpReq.Header.Set(headerAuthorization, fmt.Sprintf("Bearer %s", req.token))
	}

	status, resp, err := c.doRequest(httpReq)
	if err != nil {
		return domain.ErrNetwork.Wrap(err)
	}
	if status < 200 || status >= 300 {
		return parseError(status, resp)
	}

	if out == nil || len(resp) <= 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return domain.ErrNetwork.WithMessage(
			"failed to decode response of %s %s: %s", req.method, req.path, err,
		)
	}
	return nil
}

func (c *client) doRequest(req *http.Request) (int, []byte, error) {
	resp, err := c.Do(req)
	if err != nil {
		return -1, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, nil, err
	}
	return resp.StatusCode, body, nil
}

// parseError maps a non 2xx response to a domain error. Replayed nonces are
// always reported as DuplicateNonce and server failures as NetworkError;
// any other response carrying a {type, code, message} body is returned as
// it is.
func parseError(status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	remote := &domain.Error{}
	if err := json.Unmarshal(body, remote); err == nil && len(remote.Type) > 0 {
		message = remote.Message
	} else {
		remote = nil
	}
	if len(message) <= 0 {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusConflict:
		return domain.ErrDuplicateNonce.WithMessage("%s", message)
	case status >= http.StatusInternalServerError:
		return domain.ErrNetwork.WithMessage("%d: %s", status, message)
	case remote != nil:
		return remote
	case status == http.StatusNotFound:
		return ErrNotFound.WithMessage("%s", message)
	default:
		return domain.ErrInvalidArgument.WithMessage("%d: %s", status, message)
	}
}
