package jobs

import (
	"sync"
	"time"

	"github.com/OskarKrafft/eulangcheck/pkg/log"
)

// Store is the correlation map from tracking id to TranslationJob. It is the
// only shared mutable state in the system; every operation runs as a single
// critical section behind one RWMutex, and readers only ever see cloned
// records, never a job mid-mutation.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*TranslationJob
}

func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*TranslationJob),
	}
}

// Insert adds a pending record for a freshly submitted translation. An
// existing record under the same tracking id is overwritten without rejection:
// the provider owns id assignment and does not reuse active ids.
func (s *Store) Insert(job *TranslationJob) {
	if job == nil || job.TrackingID == "" {
		return
	}
	stored := cloneJob(job)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.mu.Lock()
	_, existed := s.jobs[stored.TrackingID]
	s.jobs[stored.TrackingID] = stored
	s.mu.Unlock()

	if existed {
		log.Warn("Overwrote existing job for tracking id %s", stored.TrackingID)
	}
}

// Get returns a snapshot of the job, if any. A miss is a normal outcome: the
// id was never submitted through this process, or the job was already swept.
func (s *Store) Get(trackingID string) (*TranslationJob, bool) {
	s.mu.RLock()
	job, ok := s.jobs[trackingID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneJob(job), true
}

// MarkCompleted transitions the job to StatusCompleted with the delivered
// translation. When no entry exists, it inserts an orphan completed record
// built from the callback payload alone — a deliberate accommodation for
// callbacks that outlive a restart or a sweep, not a silent drop.
func (s *Store) MarkCompleted(trackingID, targetLanguage, translatedText string) MarkResult {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[trackingID]
	if !ok {
		orphan := &TranslationJob{
			TrackingID:      trackingID,
			Status:          StatusCompleted,
			TargetLanguage:  targetLanguage,
			TranslatedText:  translatedText,
			CreatedAt:       now,
			CompletedAt:     now,
			DurationSeconds: 0,
		}
		s.jobs[trackingID] = orphan
		return MarkResult{Outcome: OutcomeOrphan, Job: cloneJob(orphan)}
	}

	result := MarkResult{
		Outcome:             OutcomeMatched,
		PreviousStatus:      job.Status,
		PreviousCompletedAt: job.CompletedAt,
	}
	if job.Status.Terminal() {
		result.Outcome = OutcomeRedelivered
	}

	next := cloneJob(job)
	next.Status = StatusCompleted
	if targetLanguage != "" {
		next.TargetLanguage = targetLanguage
	}
	next.TranslatedText = translatedText
	next.ErrorMessage = ""
	next.CompletedAt = now
	// CompletedAt is always stamped locally, so the duration cannot go
	// negative even when a stale redelivery overwrites a completed job.
	next.DurationSeconds = now.Sub(next.CreatedAt).Seconds()
	s.jobs[trackingID] = next

	result.Job = cloneJob(next)
	return result
}

// MarkFailed transitions the job to StatusFailed with the provider's error
// message. Unknown ids insert an orphan failed record, matching the
// MarkCompleted semantics.
func (s *Store) MarkFailed(trackingID, errorMessage string) MarkResult {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[trackingID]
	if !ok {
		orphan := &TranslationJob{
			TrackingID:   trackingID,
			Status:       StatusFailed,
			ErrorMessage: errorMessage,
			CreatedAt:    now,
			CompletedAt:  now,
		}
		s.jobs[trackingID] = orphan
		return MarkResult{Outcome: OutcomeOrphan, Job: cloneJob(orphan)}
	}

	result := MarkResult{
		Outcome:             OutcomeMatched,
		PreviousStatus:      job.Status,
		PreviousCompletedAt: job.CompletedAt,
	}
	if job.Status.Terminal() {
		result.Outcome = OutcomeRedelivered
	}

	next := cloneJob(job)
	next.Status = StatusFailed
	next.TranslatedText = ""
	next.ErrorMessage = errorMessage
	next.CompletedAt = now
	next.DurationSeconds = now.Sub(next.CreatedAt).Seconds()
	s.jobs[trackingID] = next

	result.Job = cloneJob(next)
	return result
}

// Sweep removes every job whose CreatedAt is older than maxAge and returns
// the number removed. It runs on demand only; scheduling lives with the
// caller.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// List returns snapshots of every stored job.
func (s *Store) List() []*TranslationJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]*TranslationJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		ret = append(ret, cloneJob(job))
	}
	return ret
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Stats aggregates store contents for the diagnostics surface.
func (s *Store) Stats() Snapshot {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Total: len(s.jobs)}
	for _, job := range s.jobs {
		switch job.Status {
		case StatusPending:
			snap.Pending++
			if wait := now.Sub(job.CreatedAt); wait > snap.OldestPendingWait {
				snap.OldestPendingWait = wait
			}
		case StatusCompleted:
			snap.Completed++
			if now.Sub(job.CompletedAt) < time.Hour {
				snap.CompletedLastHour++
			}
		case StatusFailed:
			snap.Failed++
		}
	}
	return snap
}

func cloneJob(job *TranslationJob) *TranslationJob {
	if job == nil {
		return nil
	}
	tmp := *job
	return &tmp
}
