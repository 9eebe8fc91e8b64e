// Package inference talks to external model-serving processes over HTTP.
//
// Detection, segmentation, and depth models run in separate Python services.
// This package posts an image as a multipart form to such a service and
// decodes its JSON reply; it knows nothing about what the model computes.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP client bound to one model service and one model name.
type Client struct {
	baseURL string
	model   string
	httpc   *http.Client
}

// NewClient creates a Client for the service at baseURL. A zero timeout
// leaves requests unbounded.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Model returns the model name sent with every request.
func (c *Client) Model() string { return c.model }

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

// CheckHealth asks the service whether the model is loaded and ready.
func (c *Client) CheckHealth(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("no service URL configured")
	}
	u := c.baseURL + "/health"
	if c.model != "" {
		u += "?model=" + url.QueryEscape(c.model)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("service unhealthy: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// PostImage encodes img as PNG, posts it to path with the given form fields
// plus the model name, and decodes the JSON response into out.
func (c *Client) PostImage(ctx context.Context, path string, img image.Image, fields map[string]string, out any) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}

	if c.model != "" {
		if err := writer.WriteField("model", c.model); err != nil {
			return fmt.Errorf("write model field: %w", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
