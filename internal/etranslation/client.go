package etranslation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/icholy/digest"

	"github.com/OskarKrafft/eulangcheck/pkg/log"
)

// Config holds the provider endpoint and credentials.
type Config struct {
	ApplicationName string
	Email           string
	APIPassword     string
	RESTURL         string
	Timeout         time.Duration
}

func (c *Config) Validate() error {
	if c.ApplicationName == "" {
		return fmt.Errorf("application name is required")
	}
	if c.Email == "" {
		return fmt.Errorf("email is required")
	}
	if c.APIPassword == "" {
		return fmt.Errorf("api password is required")
	}
	if c.RESTURL == "" {
		return fmt.Errorf("rest url is required")
	}
	return nil
}

// Client submits translation requests to the eTranslation REST API. The API
// is fire-and-forget: a successful submission returns only a tracking id, and
// the finished translation arrives later on the requester callback.
// Thread-safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a provider client with digest authentication and a
// bounded request timeout, so a slow provider cannot stall a handler slot
// indefinitely.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &digest.Transport{
				Username: config.ApplicationName,
				Password: config.APIPassword,
			},
		},
	}, nil
}

// Submit sends one translation request and classifies the synchronous
// response. It returns the provider's tracking id on success; every failure
// is a *CodeError so the caller can put the exact negative code on the wire:
//
//   - provider-reported errors keep the provider's negative code unchanged
//   - a non-2xx HTTP status becomes -<status>
//   - a 2xx response with a non-numeric body becomes CodeInvalidResponse
//   - transport failures and timeouts become CodeNetworkError
func (c *Client) Submit(ctx context.Context, sub Submission) (string, error) {
	payload := translationRequest{
		SourceLanguage:  sub.SourceLanguage,
		TargetLanguages: []string{sub.TargetLanguage},
		CallerInformation: callerInformation{
			Application: c.config.ApplicationName,
			Username:    c.config.Email,
		},
		TextToTranslate:   sub.Text,
		RequesterCallback: sub.RequesterCallback,
		ErrorCallback:     sub.ErrorCallback,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", NewCodeErrorWithCause(CodeUnexpected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.RESTURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", NewCodeErrorWithCause(CodeUnexpected, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewCodeErrorWithCause(CodeNetworkError, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewCodeErrorWithCause(CodeNetworkError, err)
	}
	body := strings.TrimSpace(string(responseBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("Provider returned HTTP %d: %s", resp.StatusCode, body)
		return "", NewCodeError(-resp.StatusCode)
	}

	id, err := strconv.Atoi(body)
	if err != nil {
		log.Error("Provider returned non-numeric body: %q", body)
		return "", NewCodeErrorWithCause(CodeInvalidResponse, err)
	}
	if id <= 0 {
		return "", NewCodeError(id)
	}

	log.Info("Provider accepted request, tracking id %s", body)
	return body, nil
}

// Probe submits a minimal EN->FR request to check provider responsiveness.
// The probe's callback lands on the normal callback endpoint and follows the
// orphan path there if the tracking id was never stored.
func (c *Client) Probe(ctx context.Context, requesterCallback string) (string, error) {
	return c.Submit(ctx, Submission{
		SourceLanguage:    "EN",
		TargetLanguage:    "FR",
		Text:              "Hello",
		RequesterCallback: requesterCallback,
	})
}
