package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OskarKrafft/eulangcheck/internal/config"
	"github.com/OskarKrafft/eulangcheck/internal/etranslation"
	"github.com/OskarKrafft/eulangcheck/internal/jobs"
	"github.com/OskarKrafft/eulangcheck/internal/service"
)

type stubProvider struct {
	trackingID string
	err        error

	lastSubmission etranslation.Submission
}

func (p *stubProvider) Submit(_ context.Context, sub etranslation.Submission) (string, error) {
	p.lastSubmission = sub
	if p.err != nil {
		return "", p.err
	}
	return p.trackingID, nil
}

func (p *stubProvider) Probe(ctx context.Context, requesterCallback string) (string, error) {
	return p.Submit(ctx, etranslation.Submission{
		SourceLanguage: "EN", TargetLanguage: "FR", Text: "Hello",
		RequesterCallback: requesterCallback,
	})
}

func newTestServer(provider *stubProvider) *httptest.Server {
	cfg := config.Config{
		Provider: config.ProviderConfig{
			ApplicationName: "TestApp",
			Email:           "test@example.com",
			APIPassword:     "secret",
			TimeoutSeconds:  30,
		},
		Server: config.ServerConfig{
			Port:          5001,
			ProductionURL: "https://translate.example.com",
		},
		Sweep: config.SweepConfig{
			CronExpr:    "0 0 * * *",
			MaxAgeHours: 24,
		},
	}
	svc := service.New(cfg, jobs.NewStore(), provider)
	return httptest.NewServer(NewServer(svc).Handler())
}

func postForm(t *testing.T, serverURL, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(serverURL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestTranslateCallbackPollRoundTrip(t *testing.T) {
	provider := &stubProvider{trackingID: "12345"}
	server := newTestServer(provider)
	defer server.Close()

	status, body := postForm(t, server.URL, "/api/translate", url.Values{
		"textToTranslate": {"Hello World!"},
		"sourceLanguage":  {"EN"},
		"targetLanguage":  {"DE"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "12345", body)
	assert.Equal(t, "https://translate.example.com/callback", provider.lastSubmission.RequesterCallback)
	assert.Equal(t, "https://translate.example.com/callback/error", provider.lastSubmission.ErrorCallback)

	// Still pending: empty body.
	status, body = postForm(t, server.URL, "/api/result", url.Values{"idRequest": {"12345"}})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)

	status, body = postForm(t, server.URL, "/callback", url.Values{
		"request-id":      {"12345"},
		"target-language": {"DE"},
		"translated-text": {"Hallo Welt!"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, body = postForm(t, server.URL, "/api/result", url.Values{"idRequest": {"12345"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hallo Welt!", body)
}

func TestTranslateValidationCodes(t *testing.T) {
	server := newTestServer(&stubProvider{trackingID: "1"})
	defer server.Close()

	tests := []struct {
		name string
		form url.Values
		code string
	}{
		{"empty text", url.Values{"sourceLanguage": {"EN"}, "targetLanguage": {"DE"}}, "-1001"},
		{"missing languages", url.Values{"textToTranslate": {"hi"}}, "-1002"},
		{"same languages", url.Values{"textToTranslate": {"hi"}, "sourceLanguage": {"DE"}, "targetLanguage": {"DE"}}, "-1003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postForm(t, server.URL, "/api/translate", tt.form)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.code, body)
		})
	}
}

func TestTranslateProviderErrorPassthrough(t *testing.T) {
	provider := &stubProvider{err: etranslation.NewCodeError(etranslation.CodeConcurrencyQuotaExceeded)}
	server := newTestServer(provider)
	defer server.Close()

	status, body := postForm(t, server.URL, "/api/translate", url.Values{
		"textToTranslate": {"Hello"},
		"sourceLanguage":  {"EN"},
		"targetLanguage":  {"DE"},
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "-20028", body)
}

func TestErrorCallbackMarksFailed(t *testing.T) {
	provider := &stubProvider{trackingID: "77"}
	server := newTestServer(provider)
	defer server.Close()

	status, _ := postForm(t, server.URL, "/api/translate", url.Values{
		"textToTranslate": {"Hello"},
		"sourceLanguage":  {"EN"},
		"targetLanguage":  {"DE"},
	})
	require.Equal(t, http.StatusOK, status)

	status, body := postForm(t, server.URL, "/callback/error", url.Values{
		"request-id": {"77"},
		"error-code": {"-20003"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, body = postForm(t, server.URL, "/api/result", url.Values{"idRequest": {"77"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "too long")
}

func TestOrphanCallbackAccepted(t *testing.T) {
	server := newTestServer(&stubProvider{trackingID: "1"})
	defer server.Close()

	status, body := postForm(t, server.URL, "/callback", url.Values{
		"request-id":      {"55555"},
		"target-language": {"FR"},
		"translated-text": {"Bonjour"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, body = postForm(t, server.URL, "/api/result", url.Values{"idRequest": {"55555"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bonjour", body)
}

func TestDuplicateCallbackLastWriteWins(t *testing.T) {
	server := newTestServer(&stubProvider{trackingID: "8"})
	defer server.Close()

	postForm(t, server.URL, "/api/translate", url.Values{
		"textToTranslate": {"Hello"},
		"sourceLanguage":  {"EN"},
		"targetLanguage":  {"DE"},
	})
	postForm(t, server.URL, "/callback", url.Values{
		"request-id": {"8"}, "target-language": {"DE"}, "translated-text": {"erste"},
	})
	postForm(t, server.URL, "/callback", url.Values{
		"request-id": {"8"}, "target-language": {"DE"}, "translated-text": {"zweite"},
	})

	_, body := postForm(t, server.URL, "/api/result", url.Values{"idRequest": {"8"}})
	assert.Equal(t, "zweite", body)
}

func TestCallbackInfoOnGet(t *testing.T) {
	server := newTestServer(&stubProvider{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/callback")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "POST", info["method"])
}

func TestStatusEndpoint(t *testing.T) {
	provider := &stubProvider{trackingID: "3"}
	server := newTestServer(provider)
	defer server.Close()

	postForm(t, server.URL, "/api/translate", url.Values{
		"textToTranslate": {"Hello"},
		"sourceLanguage":  {"EN"},
		"targetLanguage":  {"DE"},
	})

	resp, err := http.Get(server.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report service.StatusReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "production", report.DeploymentMode)
	assert.Equal(t, 1, report.ActiveTranslations)
	assert.Equal(t, 1, report.Pending)
	require.Contains(t, report.Translations, "3")
	assert.False(t, report.Translations["3"].HasTranslation)
	assert.Equal(t, "0 0 * * *", report.Sweep.Expression)
}

func TestLanguagesEndpoint(t *testing.T) {
	server := newTestServer(&stubProvider{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/languages")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload struct {
		Languages []service.Language `json:"languages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Languages, 24)
	assert.Equal(t, "BG", payload.Languages[0].Code)
	assert.Equal(t, "Bulgarian", payload.Languages[0].Name)
}

func TestDiagnoseEndpoint(t *testing.T) {
	server := newTestServer(&stubProvider{trackingID: "9001"})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/diagnose")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report service.DiagnoseReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.ServiceTest.Success)
	assert.NotEmpty(t, report.Recommendations)
}

func TestSweepEndpoint(t *testing.T) {
	server := newTestServer(&stubProvider{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/sweep", "application/x-www-form-urlencoded", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 0, payload["removed"])
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(&stubProvider{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/translate")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
