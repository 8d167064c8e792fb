// Package backend builds the shared HTTP client used for every call to the
// configured LM Studio / OpenAI-compatible backend, and fixes the endpoint
// path mapping spec.md §6 specifies.
package backend

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/util"
)

// Mode selects which base path family backend calls target. Both modes are
// behaviourally identical — it is a pure path-prefix switch, per
// SPEC_FULL.md §3 ("BackendMode... applies identically to both").
type Mode string

const (
	ModeOpenAI Mode = "openai"
	ModeNative Mode = "native"
)

const (
	pathOpenAIModels       = "/v1/models"
	pathOpenAIChat         = "/v1/chat/completions"
	pathOpenAICompletions  = "/v1/completions"
	pathOpenAIEmbeddings   = "/v1/embeddings"
	pathNativeModels       = "/api/v0/models"
	pathNativeChat         = "/api/v0/chat/completions"
	pathNativeCompletions  = "/api/v0/completions"
	pathNativeEmbeddings   = "/api/v0/embeddings"
)

// Client wraps the base URL, mode and a shared *http.Client tuned for
// long-lived token-streaming connections, grounded on the teacher's
// proxy/sherpa Service constructor.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Mode    Mode
}

// New constructs a Client with a transport tuned the way the teacher tunes
// its proxy transport: disabled Nagle on freshly dialled connections (token
// streams are latency-sensitive, not throughput-sensitive), a bounded idle
// connection pool, and keep-alives enabled so successive requests to the
// same backend reuse connections.
func New(baseURL string, mode Mode) *Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn, nil
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		HTTP:    &http.Client{Transport: transport},
		BaseURL: baseURL,
		Mode:    mode,
	}
}

// resolve joins path onto BaseURL via util.ResolveURLPath rather than raw
// string concatenation, so a BaseURL carrying its own path prefix (an LM
// Studio instance served behind a reverse-proxy path, say) keeps that
// prefix instead of having it silently overwritten.
func (c *Client) resolve(path string) string {
	return util.ResolveURLPath(c.BaseURL, path)
}

func (c *Client) ModelsURL() string {
	if c.Mode == ModeNative {
		return c.resolve(pathNativeModels)
	}
	return c.resolve(pathOpenAIModels)
}

func (c *Client) ChatURL() string {
	if c.Mode == ModeNative {
		return c.resolve(pathNativeChat)
	}
	return c.resolve(pathOpenAIChat)
}

func (c *Client) CompletionsURL() string {
	if c.Mode == ModeNative {
		return c.resolve(pathNativeCompletions)
	}
	return c.resolve(pathOpenAICompletions)
}

func (c *Client) EmbeddingsURL() string {
	if c.Mode == ModeNative {
		return c.resolve(pathNativeEmbeddings)
	}
	return c.resolve(pathOpenAIEmbeddings)
}
