package mailchimp

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

	"github.com/pkg/errors"
)

const (
	// page size for the members endpoints (the mailchimp docs say the maximum allowed is 1000)
	pageSize = 1000

	defaultTimeout = 30 * time.Second
)

// Client talks to the Mailchimp Marketing API v3 on behalf of a single account.
// It holds no mutable state after construction and is safe for concurrent use.
type Client struct {
	baseUrl    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL replaces the datacenter URL derived from the server prefix.
func WithBaseURL(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// BaseURL returns the API root for a datacenter, e.g. "us21".
func BaseURL(serverPrefix string) string {
	return fmt.Sprintf("https://%v.api.mailchimp.com/3.0", serverPrefix)
}

func NewClient(apiKey string, serverPrefix string, opts ...ClientOption) (*Client, error) {

	if len(apiKey) == 0 {
		return nil, errors.New("expecting the mailchimp api key, but it was empty")
	}

	if len(serverPrefix) == 0 {
		return nil, errors.New("expecting the mailchimp server prefix, but it was empty")
	}

	c := &Client{
		baseUrl:    BaseURL(serverPrefix),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.baseUrl) == 0 {
		return nil, errors.New("expecting the base url, but it was empty")
	}
	if c.httpClient == nil {
		return nil, errors.New("expecting an http client, but it was nil")
	}

	// just in case, to avoid the double slash between the base URL and API path
	c.baseUrl = strings.TrimSuffix(c.baseUrl, "/")

	return c, nil
}

// sendRequest performs one API call. Any status other than wantStatus is returned as an *APIError.
func (c *Client) sendRequest(ctx context.Context, method string, path string, query url.Values,
	body interface{}, wantStatus int, out interface{}) error {

	reqUrl := c.baseUrl + path
	if len(query) > 0 {
		reqUrl = reqUrl + "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "unable to marshal the request body")
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqUrl, bodyReader)
	if err != nil {
		return errors.Wrap(err, "unable to create the http request")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "unable to send the http request")
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "unable to read the response body")
	}

	if res.StatusCode != wantStatus {
		return newAPIError(res.StatusCode, data)
	}

	if out != nil {
		err = json.Unmarshal(data, out)
		if err != nil {
			return errors.Wrap(err, "unable to unmarshal the response data into struct")
		}
	}

	return nil
}
