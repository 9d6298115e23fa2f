package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/OskarKrafft/eulangcheck/internal/config"
	"github.com/OskarKrafft/eulangcheck/internal/etranslation"
	"github.com/OskarKrafft/eulangcheck/internal/jobs"
	"github.com/OskarKrafft/eulangcheck/pkg/log"
)

// Provider is the outbound side of the relay: one authenticated submission,
// answered synchronously with a tracking id or a negative code.
type Provider interface {
	Submit(ctx context.Context, sub etranslation.Submission) (string, error)
	Probe(ctx context.Context, requesterCallback string) (string, error)
}

// Service owns the correlation flow: it validates submissions, forwards them
// to the provider, records pending entries, resolves inbound callbacks, and
// answers polls. The store is passed in explicitly; there is no ambient
// shared state.
type Service struct {
	cfg      config.Config
	store    *jobs.Store
	provider Provider

	probeGroup singleflight.Group
}

func New(cfg config.Config, store *jobs.Store, provider Provider) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		provider: provider,
	}
}

// SubmitRequest carries the caller's form input. Callbacks supplies the
// requester and error callback URLs for the submission; it is invoked only
// after validation passes, so a rejected submission never builds callback
// URLs or logs the missing-PRODUCTION_URL warning.
type SubmitRequest struct {
	Text           string
	SourceLanguage string
	TargetLanguage string

	Callbacks func() (requester, errCallback string)
}

// Submit validates the request, forwards it to the provider, and on success
// inserts a pending record under the provider's tracking id. Every failure
// is an *etranslation.CodeError; validation failures return before any
// remote call is made.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	text := strings.TrimSpace(req.Text)
	source := strings.ToUpper(strings.TrimSpace(req.SourceLanguage))
	target := strings.ToUpper(strings.TrimSpace(req.TargetLanguage))

	if text == "" {
		return "", etranslation.NewCodeError(etranslation.CodeEmptyText)
	}
	if !IsSupported(source) || !IsSupported(target) {
		return "", etranslation.NewCodeError(etranslation.CodeMissingLanguages)
	}
	if source == target {
		return "", etranslation.NewCodeError(etranslation.CodeSameLanguages)
	}

	warnOnLanguageMismatch(text, source)

	log.Info("Translation request: %s -> %s, %d characters", source, target, len(text))

	var requesterCallback, errorCallback string
	if req.Callbacks != nil {
		requesterCallback, errorCallback = req.Callbacks()
	}

	trackingID, err := s.provider.Submit(ctx, etranslation.Submission{
		SourceLanguage:    source,
		TargetLanguage:    target,
		Text:              text,
		RequesterCallback: requesterCallback,
		ErrorCallback:     errorCallback,
	})
	if err != nil {
		return "", err
	}

	s.store.Insert(&jobs.TranslationJob{
		TrackingID:     trackingID,
		Status:         jobs.StatusPending,
		SourceLanguage: source,
		TargetLanguage: target,
		OriginalText:   text,
		CreatedAt:      time.Now(),
	})
	log.Info("Stored pending job %s (%s -> %s)", trackingID, source, target)
	return trackingID, nil
}

// warnOnLanguageMismatch runs a best-effort detection over the submitted text
// and logs when it confidently disagrees with the declared source language.
// Detection is advisory only and never blocks a submission.
func warnOnLanguageMismatch(text, source string) {
	info := whatlanggo.Detect(text)
	detected := info.Lang.Iso6391()
	if detected == "" || !info.IsReliable() {
		return
	}
	if !strings.EqualFold(detected, source) {
		log.Warn("Declared source language %s but text looks like %s", source, strings.ToUpper(detected))
	}
}

// HandleCallback records a delivered translation. Unknown tracking ids take
// the orphan path; duplicates overwrite (last write wins). The caller must
// acknowledge success in every case: the provider has no retry-suppression
// signal, and failure responses only provoke redelivery.
func (s *Service) HandleCallback(trackingID, targetLanguage, translatedText string) jobs.MarkResult {
	result := s.store.MarkCompleted(trackingID, targetLanguage, translatedText)
	switch result.Outcome {
	case jobs.OutcomeOrphan:
		log.Warn("Callback for unknown tracking id %s, stored as orphan", trackingID)
	case jobs.OutcomeRedelivered:
		log.Warn("Duplicate callback for tracking id %s (previously %s at %s), overwriting",
			trackingID, result.PreviousStatus, result.PreviousCompletedAt.Format(time.RFC3339))
	default:
		log.Info("Translation completed for tracking id %s in %.1fs",
			trackingID, result.Job.DurationSeconds)
	}
	return result
}

// HandleErrorCallback records a provider-reported failure delivered on the
// error callback. The acknowledgement rule is the same as for successful
// callbacks.
func (s *Service) HandleErrorCallback(trackingID, errorCode, errorMessage string) jobs.MarkResult {
	message := strings.TrimSpace(errorMessage)
	if code, err := strconv.Atoi(strings.TrimSpace(errorCode)); err == nil && message == "" {
		message = etranslation.MessageFor(code)
	}
	if message == "" {
		message = etranslation.MessageFor(etranslation.CodeUnexpected)
	}

	result := s.store.MarkFailed(trackingID, message)
	if result.Outcome == jobs.OutcomeOrphan {
		log.Warn("Error callback for unknown tracking id %s, stored as orphan", trackingID)
	} else {
		log.Warn("Translation failed for tracking id %s: %s", trackingID, message)
	}
	return result
}

// Poll returns the job snapshot for a tracking id. A miss is a normal
// outcome: the caller cannot distinguish "still working" from "never
// existed" through this interface, matching the remote protocol.
func (s *Service) Poll(trackingID string) (*jobs.TranslationJob, bool) {
	job, ok := s.store.Get(trackingID)
	if !ok {
		log.Debug("Poll for unknown tracking id %s", trackingID)
		return nil, false
	}
	if job.Status == jobs.StatusPending {
		waited := time.Since(job.CreatedAt)
		if waited > 30*time.Second {
			log.Debug("Translation still pending for tracking id %s (waiting %ds)",
				trackingID, int(waited.Seconds()))
		}
	}
	return job, true
}

// CallbackURLs derives the requester and error callback URLs for one inbound
// request. The configured production base wins; otherwise the URLs fall back
// to the inbound request's host, which the provider may not be able to reach.
func (s *Service) CallbackURLs(r *http.Request) (requester, errCallback string) {
	base := s.cfg.Server.ProductionURL
	if base == "" {
		scheme := "http"
		if r != nil && r.TLS != nil {
			scheme = "https"
		}
		host := ""
		if r != nil {
			host = r.Host
		}
		base = fmt.Sprintf("%s://%s", scheme, host)
		log.Warn("No PRODUCTION_URL configured, deriving callback base %s from request; the provider may not reach it", base)
	}
	return base + "/callback", base + "/callback/error"
}

// CallbackReachable reports whether an externally reachable callback base is
// configured.
func (s *Service) CallbackReachable() bool {
	return s.cfg.Server.ProductionURL != ""
}

// Sweep removes jobs older than the configured retention and returns the
// count removed.
func (s *Service) Sweep() int {
	maxAge := time.Duration(s.cfg.Sweep.MaxAgeHours) * time.Hour
	removed := s.store.Sweep(maxAge)
	if removed > 0 {
		log.Info("Sweep removed %d jobs older than %s", removed, maxAge)
	}
	return removed
}

// ScheduleSweep registers the age-based sweep on the given cron runner.
func (s *Service) ScheduleSweep(c *cron.Cron) error {
	_, err := c.AddFunc(s.cfg.Sweep.CronExpr, func() {
		s.Sweep()
	})
	return err
}
