package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/OskarKrafft/eulangcheck/internal/etranslation"
	"github.com/OskarKrafft/eulangcheck/internal/jobs"
	"github.com/OskarKrafft/eulangcheck/internal/service"
	"github.com/OskarKrafft/eulangcheck/pkg/log"
)

// handleTranslate accepts a translation submission and answers on the
// legacy plain-text wire: the positive tracking id on success, a negative
// integer code on failure. Validation failures are 400, everything else
// that went wrong upstream is 502.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	trackingID, err := s.svc.Submit(r.Context(), service.SubmitRequest{
		Text:           r.PostFormValue("textToTranslate"),
		SourceLanguage: r.PostFormValue("sourceLanguage"),
		TargetLanguage: r.PostFormValue("targetLanguage"),
		Callbacks: func() (string, string) {
			return s.svc.CallbackURLs(r)
		},
	})
	if err != nil {
		code, status := wireCode(err)
		writeText(w, status, fmt.Sprintf("%d", code))
		return
	}
	writeText(w, http.StatusOK, trackingID)
}

// handleResult answers a poll for one tracking id. A completed job returns
// the translated text; pending and unknown ids both return an empty body,
// because the poller cannot tell them apart anyway; a failed job returns
// 422 with the stored error message.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	trackingID := strings.TrimSpace(r.PostFormValue("idRequest"))
	if trackingID == "" {
		writeText(w, http.StatusBadRequest, "")
		return
	}

	job, ok := s.svc.Poll(trackingID)
	if !ok {
		writeText(w, http.StatusOK, "")
		return
	}

	switch job.Status {
	case jobs.StatusCompleted:
		writeText(w, http.StatusOK, job.TranslatedText)
	case jobs.StatusFailed:
		writeText(w, http.StatusUnprocessableEntity, job.ErrorMessage)
	default:
		writeText(w, http.StatusOK, "")
	}
}

// handleCallback receives the provider's asynchronous translation delivery.
// The response is always 200 "OK": the provider interprets anything else as
// a delivery failure and retries, and a retry cannot carry more information
// than the payload already did.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{
			"endpoint": "translation callback",
			"method":   "POST",
			"fields":   []string{"request-id", "target-language", "translated-text"},
		})
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	trackingID := strings.TrimSpace(r.PostFormValue("request-id"))
	if trackingID == "" {
		log.Warn("Callback without request-id from %s", r.RemoteAddr)
		writeText(w, http.StatusOK, "OK")
		return
	}

	s.svc.HandleCallback(
		trackingID,
		strings.TrimSpace(r.PostFormValue("target-language")),
		r.PostFormValue("translated-text"),
	)
	writeText(w, http.StatusOK, "OK")
}

// handleErrorCallback receives provider-reported failures. Acknowledgement
// follows the same always-OK rule as the success callback.
func (s *Server) handleErrorCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	trackingID := strings.TrimSpace(r.PostFormValue("request-id"))
	if trackingID == "" {
		log.Warn("Error callback without request-id from %s", r.RemoteAddr)
		writeText(w, http.StatusOK, "OK")
		return
	}

	s.svc.HandleErrorCallback(
		trackingID,
		strings.TrimSpace(r.PostFormValue("error-code")),
		r.PostFormValue("error-message"),
	)
	writeText(w, http.StatusOK, "OK")
}

// handleTestCallback injects a synthetic callback into the correlation flow,
// for verifying the callback path without the provider in the loop.
func (s *Server) handleTestCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	trackingID := strings.TrimSpace(r.PostFormValue("request-id"))
	if trackingID == "" {
		trackingID = fmt.Sprintf("test-%d", time.Now().UnixNano())
	}
	text := r.PostFormValue("translated-text")
	if text == "" {
		text = "Test translation delivered at " + time.Now().Format(time.RFC3339)
	}

	result := s.svc.HandleCallback(trackingID, strings.TrimSpace(r.PostFormValue("target-language")), text)
	writeJSON(w, http.StatusOK, map[string]any{
		"tracking_id": trackingID,
		"outcome":     result.Outcome,
		"status":      result.Job.Status,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Status(r))
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Diagnose(r.Context(), r))
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": service.SupportedLanguages(),
	})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	removed := s.svc.Sweep()
	writeJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
	})
}

// wireCode extracts the negative wire code from a submission error and maps
// it to an HTTP status: validation failures are the caller's fault, the rest
// is an upstream problem.
func wireCode(err error) (code, status int) {
	var codeErr *etranslation.CodeError
	if !errors.As(err, &codeErr) {
		return etranslation.CodeUnexpected, http.StatusBadGateway
	}
	if codeErr.Validation() {
		return codeErr.Code, http.StatusBadRequest
	}
	return codeErr.Code, http.StatusBadGateway
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
