package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/artifact"
)

const DefaultTinifyEndpoint = "https://api.tinify.com"

// Operation is the JSON body sent to a compressed image's location, such as
// {"resize": {"method": "fit", "width": 800}}. An empty Operation downloads
// the compressed image as is.
type Operation map[string]any

// Compressor is the compression service used by the image actions.
type Compressor interface {
	// Shrink uploads the artifact and returns the private location of the
	// compressed result.
	Shrink(ctx context.Context, a artifact.Artifact) (string, error)
	// Fetch applies op to the compressed image at location and streams the result.
	Fetch(ctx context.Context, location string, op Operation) (io.ReadCloser, error)
}

// TinifyClient talks to a Tinify compatible HTTP API.
type TinifyClient struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewTinify creates a client from a service configuration holding api_key and
// an optional endpoint.
func NewTinify(cfg api.Params) (*TinifyClient, error) {
	key := cfg.String("api_key")
	if key == "" {
		return nil, fmt.Errorf("%w: compression service api_key is not configured", api.ErrMissingCredential)
	}

	endpoint := cfg.String("endpoint")
	if endpoint == "" {
		endpoint = DefaultTinifyEndpoint
	}

	return &TinifyClient{
		apiKey:   key,
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func (c *TinifyClient) Shrink(ctx context.Context, a artifact.Artifact) (string, error) {
	var (
		body        io.Reader
		contentType string
	)

	switch a.Kind {
	case artifact.FilePath:
		data, err := os.ReadFile(a.Value)
		if err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", api.ErrFilesystem, a.Value, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/octet-stream"
	case artifact.URL:
		payload, err := json.Marshal(map[string]any{"source": map[string]string{"url": a.Value}})
		if err != nil {
			return "", fmt.Errorf("encoding shrink request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	default:
		return "", fmt.Errorf("%w: cannot compress %s artifact", api.ErrInvalidInput, a.Kind)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint+"/shrink", contentType, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", remoteError(resp)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("%w: compression service returned no location", api.ErrServiceError)
	}

	slog.Debug("image shrunk", "source", a.Value, "location", location,
		"compressionCount", resp.Header.Get("Compression-Count"))
	return location, nil
}

func (c *TinifyClient) Fetch(ctx context.Context, location string, op Operation) (io.ReadCloser, error) {
	method := http.MethodGet
	var (
		body        io.Reader
		contentType string
	)
	if len(op) > 0 {
		payload, err := json.Marshal(op)
		if err != nil {
			return nil, fmt.Errorf("encoding operation: %w", err)
		}
		method = http.MethodPost
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, location, contentType, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, remoteError(resp)
	}

	return resp.Body, nil
}

func (c *TinifyClient) do(ctx context.Context, method, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth("api", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrServiceError, err)
	}
	return resp, nil
}

type remoteErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// remoteError surfaces the service's own error message.
func remoteError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body remoteErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return fmt.Errorf("%w: %s", api.ErrServiceError, body.Message)
	}

	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("%w: %s", api.ErrServiceError, msg)
}
