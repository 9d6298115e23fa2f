package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/OskarKrafft/eulangcheck/internal/etranslation"
	"github.com/OskarKrafft/eulangcheck/internal/jobs"
	"github.com/OskarKrafft/eulangcheck/pkg/icron"
	"github.com/OskarKrafft/eulangcheck/pkg/log"
)

// StatusReport is the read-only store/config snapshot served on /api/status.
type StatusReport struct {
	CallbackURL        string                `json:"callback_url"`
	DeploymentMode     string                `json:"deployment_mode"`
	CallbackReachable  bool                  `json:"callback_reachable"`
	ActiveTranslations int                   `json:"active_translations"`
	Pending            int                   `json:"pending"`
	Completed          int                   `json:"completed"`
	Failed             int                   `json:"failed"`
	Translations       map[string]JobSummary `json:"translations"`
	Sweep              SweepStatus           `json:"sweep"`
}

// JobSummary omits the texts themselves: the status surface is for
// operators, not for reading translations out of band.
type JobSummary struct {
	Status         jobs.Status `json:"status"`
	HasTranslation bool        `json:"has_translation"`
	SourceLanguage string      `json:"source_language,omitempty"`
	TargetLanguage string      `json:"target_language,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

type SweepStatus struct {
	Expression  string    `json:"expression"`
	MaxAgeHours int       `json:"max_age_hours"`
	Last        time.Time `json:"last,omitzero"`
	Next        time.Time `json:"next,omitzero"`
}

// Status builds the store snapshot for one inbound request.
func (s *Service) Status(r *http.Request) StatusReport {
	requesterCallback, _ := s.CallbackURLs(r)

	mode := "local"
	if s.CallbackReachable() {
		mode = "production"
	}

	list := s.store.List()
	translations := make(map[string]JobSummary, len(list))
	report := StatusReport{
		CallbackURL:        requesterCallback,
		DeploymentMode:     mode,
		CallbackReachable:  s.CallbackReachable(),
		ActiveTranslations: len(list),
		Translations:       translations,
	}
	for _, job := range list {
		switch job.Status {
		case jobs.StatusPending:
			report.Pending++
		case jobs.StatusCompleted:
			report.Completed++
		case jobs.StatusFailed:
			report.Failed++
		}
		translations[job.TrackingID] = JobSummary{
			Status:         job.Status,
			HasTranslation: job.TranslatedText != "",
			SourceLanguage: job.SourceLanguage,
			TargetLanguage: job.TargetLanguage,
			CreatedAt:      job.CreatedAt,
		}
	}

	report.Sweep = SweepStatus{
		Expression:  s.cfg.Sweep.CronExpr,
		MaxAgeHours: s.cfg.Sweep.MaxAgeHours,
	}
	if info, err := icron.GetTriggerInfo(s.cfg.Sweep.CronExpr, time.Now()); err == nil {
		report.Sweep.Last = info.Last
		report.Sweep.Next = info.Next
	}

	return report
}

// DiagnoseReport is the deep health report served on /api/diagnose,
// combining one live provider probe with store-derived analysis.
type DiagnoseReport struct {
	Timestamp          time.Time        `json:"timestamp"`
	ActiveTranslations int              `json:"active_translations"`
	ServiceTest        ProbeResult      `json:"service_test"`
	CallbackAnalysis   CallbackAnalysis `json:"callback_analysis"`
	PendingAnalysis    PendingAnalysis  `json:"pending_analysis"`
	Recommendations    []string         `json:"recommendations"`
}

type ProbeResult struct {
	Success        bool   `json:"success"`
	TrackingID     string `json:"tracking_id,omitempty"`
	Code           int    `json:"code,omitempty"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	Interpretation string `json:"interpretation"`
}

type CallbackAnalysis struct {
	CompletedTranslations int    `json:"completed_translations"`
	RecentCallbacks       int    `json:"recent_callbacks_last_hour"`
	Interpretation        string `json:"interpretation"`
}

type PendingAnalysis struct {
	Count              int             `json:"count"`
	LongestWaitMinutes float64         `json:"longest_wait_minutes"`
	Details            []PendingDetail `json:"details"`
}

type PendingDetail struct {
	TrackingID      string `json:"tracking_id"`
	WaitTimeSeconds int    `json:"wait_time_seconds"`
	LanguagePair    string `json:"language_pair"`
}

const probeTimeout = 10 * time.Second

// Diagnose runs the health checks. Concurrent callers share a single live
// probe through singleflight so operator dashboards cannot multiply load on
// the provider.
func (s *Service) Diagnose(ctx context.Context, r *http.Request) DiagnoseReport {
	requesterCallback, _ := s.CallbackURLs(r)

	probeAny, _, shared := s.probeGroup.Do("probe", func() (any, error) {
		return s.runProbe(ctx, requesterCallback), nil
	})
	probe := probeAny.(ProbeResult)
	if shared {
		log.Debug("Diagnose probe shared with a concurrent request")
	}

	stats := s.store.Stats()
	report := DiagnoseReport{
		Timestamp:          time.Now(),
		ActiveTranslations: stats.Total,
		ServiceTest:        probe,
		Recommendations:    make([]string, 0, 4),
	}

	if probe.Success {
		report.Recommendations = append(report.Recommendations,
			"Service appears healthy - longer wait times may be due to high demand")
	} else if probe.Code == etranslation.CodeConcurrencyQuotaExceeded {
		report.Recommendations = append(report.Recommendations,
			"Service is very busy - try again in 10-15 minutes")
	} else if probe.Code == etranslation.CodeNetworkError {
		report.Recommendations = append(report.Recommendations,
			"Service connectivity issues - check EU service status")
	} else {
		report.Recommendations = append(report.Recommendations,
			"Service may be experiencing issues - check EU service status")
	}

	report.CallbackAnalysis = CallbackAnalysis{
		CompletedTranslations: stats.Completed,
		RecentCallbacks:       stats.CompletedLastHour,
	}
	if stats.CompletedLastHour > 0 || stats.Completed > 0 {
		report.CallbackAnalysis.Interpretation = "Callbacks working normally"
	} else {
		report.CallbackAnalysis.Interpretation = "No recent callbacks received"
		if stats.Total > 0 {
			report.Recommendations = append(report.Recommendations,
				"No recent callbacks received - service may be experiencing callback delivery issues")
		}
	}

	report.PendingAnalysis = s.analyzePending()
	if report.PendingAnalysis.LongestWaitMinutes > 3 {
		report.Recommendations = append(report.Recommendations,
			"Pending translations are waiting several minutes - service is experiencing delays")
	}

	return report
}

// runProbe performs one bounded live submission against the provider.
func (s *Service) runProbe(ctx context.Context, requesterCallback string) ProbeResult {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	trackingID, err := s.provider.Probe(probeCtx, requesterCallback)
	elapsed := time.Since(start).Milliseconds()

	if err == nil {
		return ProbeResult{
			Success:        true,
			TrackingID:     trackingID,
			ResponseTimeMS: elapsed,
			Interpretation: "Service is accepting requests normally",
		}
	}

	result := ProbeResult{ResponseTimeMS: elapsed}
	var codeErr *etranslation.CodeError
	if errors.As(err, &codeErr) {
		result.Code = codeErr.Code
	} else {
		result.Code = etranslation.CodeUnexpected
	}

	switch result.Code {
	case etranslation.CodeConcurrencyQuotaExceeded:
		result.Interpretation = "Service is experiencing high load (concurrency quota exceeded)"
	case etranslation.CodeNetworkError:
		result.Interpretation = "Service is unreachable or very slow"
	default:
		result.Interpretation = etranslation.MessageFor(result.Code)
	}
	return result
}

const maxPendingDetails = 5

func (s *Service) analyzePending() PendingAnalysis {
	now := time.Now()
	analysis := PendingAnalysis{Details: make([]PendingDetail, 0, maxPendingDetails)}

	for _, job := range s.store.List() {
		if job.Status != jobs.StatusPending {
			continue
		}
		wait := now.Sub(job.CreatedAt)
		analysis.Count++
		if minutes := wait.Minutes(); minutes > analysis.LongestWaitMinutes {
			analysis.LongestWaitMinutes = minutes
		}
		if len(analysis.Details) < maxPendingDetails {
			analysis.Details = append(analysis.Details, PendingDetail{
				TrackingID:      job.TrackingID,
				WaitTimeSeconds: int(wait.Seconds()),
				LanguagePair:    job.SourceLanguage + " -> " + job.TargetLanguage,
			})
		}
	}
	return analysis
}
