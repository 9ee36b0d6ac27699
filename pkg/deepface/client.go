package deepface

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

type Client struct {
	url           *url.URL
	client        *http.Client
	sharedUploads bool
	log           *logrus.Logger
}

func NewClient(_url string, client *http.Client, sharedUploads bool, log *logrus.Logger) (*Client, error) {
	u, err := url.Parse(_url)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url: %q needs scheme and host", _url)
	}

	if client == nil {
		client = http.DefaultClient
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{url: u, client: client, sharedUploads: sharedUploads, log: log}, nil
}

func (c *Client) Analyze(ctx context.Context, req *entity.AnalyzeRequest) (any, error) {
	payload, err := NewPayload(req, c.sharedUploads)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	_url := c.url.JoinPath("/analyze").String()
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, _url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	c.log.WithFields(logrus.Fields{
		"detector_backend":  req.DetectorBackend,
		"enforce_detection": req.EnforceDetection,
		"payload_size":      len(body),
	}).Debug("Sending analyze request")

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", emotion.ErrRecognizerUnavailable, err)
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", emotion.ErrRecognizerUnavailable, err)
	}

	if response.StatusCode != http.StatusOK {
		var failure AnalyzeResponse
		if err := json.Unmarshal(respBody, &failure); err == nil && failure.message() != "" {
			return nil, MapFailure(failure.message())
		}
		if response.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: server response status code: %d, body: %s", emotion.ErrRecognizerUnavailable, response.StatusCode, respBody)
		}
		return nil, fmt.Errorf("%w: server response status code: %d, body: %s", emotion.ErrAnalysisFailed, response.StatusCode, respBody)
	}

	return DecodeResponse(respBody)
}

func (c *Client) Ping(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %w", emotion.ErrRecognizerUnavailable, err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: server response status code: %d", emotion.ErrRecognizerUnavailable, response.StatusCode)
	}

	return nil
}
