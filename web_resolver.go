package ddns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
)

const (
	// DefaultIPService answers with {"origin": "<caller address>"}.
	DefaultIPService = "http://httpbin.org/ip"
	DefaultIPField   = "origin"
)

// WebResolver constructs a resolver that asks an external web service for the caller's "public" IP address.
//
// serviceURL must speak http, return status "200 OK",
// and respond with a JSON object holding the address as a string under field.
// The field's value is returned exactly as sent.
// An empty serviceURL or field selects DefaultIPService and DefaultIPField.
//
// The resolver makes one request per Resolve call and never retries;
// a failed lookup fails the whole run.
func WebResolver(serviceURL, field string) (Resolver, error) {
	if serviceURL == "" {
		serviceURL = DefaultIPService
	}
	if field == "" {
		field = DefaultIPField
	}
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing URL: %w", err)
	}
	return &webResolver{serviceURL: u, field: field, logger: logr.Discard()}, nil
}

type webResolver struct {
	httpClient *http.Client
	serviceURL *url.URL
	field      string
	logger     logr.Logger
}

func (wr *webResolver) SetHTTPClient(c *http.Client) { wr.httpClient = c }
func (wr *webResolver) SetLogger(l logr.Logger)      { wr.logger = l }

// Resolve implements ddns.Resolver.
func (wr *webResolver) Resolve(ctx context.Context) (string, error) {
	// 15 seconds is an eternity for the size of the request we're making,
	// but this ensures that all calls to resolve will eventually complete even if the user supplied context.TODO or context.Background
	// using http.DefaultClient (with no timeout).
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wr.serviceURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: error creating request: %w", ErrNetwork, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	httpclient := wr.httpClient
	if httpclient == nil {
		httpclient = http.DefaultClient
	}

	resp, err := httpclient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: http request failed: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %s", ErrNetwork, wr.serviceURL.Host, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response body: %w", ErrNetwork, err)
	}
	ip, err := decodeAddress(body, wr.field)
	if err != nil {
		return "", err
	}
	wr.logger.V(1).Info("lookup succeeded", "ip", ip, "service", wr.serviceURL.Host)
	return ip, nil
}

// decodeAddress pulls the string stored under field out of a JSON object.
func decodeAddress(body []byte, field string) (string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: response is not a JSON object: %w", ErrParse, err)
	}
	raw, ok := doc[field]
	if !ok {
		return "", fmt.Errorf("%w: response has no %q field", ErrParse, field)
	}
	var ip string
	if err := json.Unmarshal(raw, &ip); err != nil {
		return "", fmt.Errorf("%w: field %q is not a string: %w", ErrParse, field, err)
	}
	if ip == "" {
		return "", fmt.Errorf("%w: field %q is empty", ErrParse, field)
	}
	return ip, nil
}
