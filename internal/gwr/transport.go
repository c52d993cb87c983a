package gwr

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// poster sends one encoded command envelope and returns the raw response
// text. Satisfied by Transport; tests substitute a scripted double.
type poster interface {
	Post(ctx context.Context, payload string) (string, error)
}

// Transport issues command envelopes to the gateway's gop.php endpoint.
// Every network-level failure is normalized to ErrGatewayUnavailable so the
// orchestrator can apply one retry policy regardless of the underlying cause.
type Transport struct {
	url        string
	httpClient *http.Client
}

// NewTransport creates a transport for the given gateway host. The gateway
// serves a self-signed certificate, so TLS verification is skipped.
func NewTransport(host string, timeout time.Duration) *Transport {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Transport{
		url: fmt.Sprintf("https://%s/gwr/gop.php", host),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// newTransportURL is used by tests to point the transport at an httptest
// server instead of the fixed gateway path.
func newTransportURL(url string, client *http.Client) *Transport {
	return &Transport{url: url, httpClient: client}
}

// Post sends one envelope and returns the raw response body. The gateway
// signals errors in the body, never via HTTP status, so the status code is
// not interpreted here.
func (t *Transport) Post(ctx context.Context, payload string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept", "application/xml")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", t.url).Msg("Gateway request failed")
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return string(body), nil
}
