package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rescuelink/pkg/types"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

const reconcileTimeout = 30 * time.Second

type API interface {
	ListReports(ctx context.Context, filter types.ReportFilter) ([]*types.Report, error)
	SubmitReport(ctx context.Context, sub types.ReportSubmission) (*types.Report, error)
	PatchReport(ctx context.Context, id string, patch types.ReportPatch) (*types.Report, error)
	ListContacts(ctx context.Context) ([]*types.Contact, error)
	CreateContact(ctx context.Context, in types.ContactInput) (*types.Contact, error)
}

// Synchronizer keeps a local cache of reports and contacts in step with the
// API. Mutations are merged into the cache only after the server accepted
// them, then a background refresh reconciles anything that drifted.
type Synchronizer struct {
	api       API
	notifier  Notifier
	logger    *logrus.Logger
	reconcile bool
	now       func() time.Time

	mu       sync.RWMutex
	reports  []*types.Report
	contacts []*types.Contact
	// generation counts local merges; a refresh that started before the
	// latest merge is discarded.
	generation uint64

	background sync.WaitGroup
	onRefresh  func(types.Views)
}

func NewSynchronizer(api API, notifier Notifier, logger *logrus.Logger, reconcile bool) *Synchronizer {
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	return &Synchronizer{
		api:       api,
		notifier:  notifier,
		logger:    logger,
		reconcile: reconcile,
		now:       time.Now,
		reports:   make([]*types.Report, 0),
		contacts:  make([]*types.Contact, 0),
	}
}

// Refresh re-pulls both collections. On failure the cache is left untouched.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.RLock()
	started := s.generation
	s.mu.RUnlock()

	reports, err := s.api.ListReports(ctx, types.ReportFilter{})
	if err != nil {
		s.notifyFailure("Could not load reports", err)
		return err
	}

	contacts, err := s.api.ListContacts(ctx)
	if err != nil {
		s.notifyFailure("Could not load contacts", err)
		return err
	}

	s.mu.Lock()
	if s.generation != started {
		s.mu.Unlock()
		s.logger.Debug("discarding refresh that raced a local update")
		return nil
	}

	s.reports = nonNil(reports)
	s.contacts = nonNil(contacts)
	hook := s.onRefresh
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"reports":  len(reports),
		"contacts": len(contacts),
	}).Debug("cache refreshed")

	if hook != nil {
		hook(s.Views())
	}

	return nil
}

// OnRefresh registers fn to receive the views after every applied refresh.
func (s *Synchronizer) OnRefresh(fn func(types.Views)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *Synchronizer) Reports() []*types.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if r == nil {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

func (s *Synchronizer) Contacts() []*types.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if c == nil {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out
}

func (s *Synchronizer) Views() types.Views {
	return types.Partition(s.Reports())
}

func (s *Synchronizer) Submit(ctx context.Context, sub types.ReportSubmission) (*types.Report, error) {
	report, err := s.api.SubmitReport(ctx, sub)
	if err != nil {
		s.notifyFailure("Could not submit report", err)
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	s.reports = append([]*types.Report{report.Clone()}, s.reports...)
	s.mu.Unlock()

	if report.IsEmergencySOS {
		s.notifier.Notify(NoticeSuccess, "SOS Sent", "Emergency SOS sent. Help is being notified.")
	} else {
		s.notifier.Notify(NoticeSuccess, "Report Submitted", "Your report was submitted for review.")
	}

	s.reconcileAsync(ctx)
	return report, nil
}

func (s *Synchronizer) Approve(ctx context.Context, id string, severity types.Severity) (*types.Report, error) {
	status := types.ReportStatusApproved
	now := s.now()

	patch := types.ReportPatch{Status: &status, ApprovedAt: &now}
	if severity != "" {
		patch.Severity = &severity
	}

	return s.transition(ctx, id, patch, "Report approved! Sent to Rescue Teams & Public Alerts.")
}

func (s *Synchronizer) Reject(ctx context.Context, id, reason string) (*types.Report, error) {
	status := types.ReportStatusRejected
	now := s.now()

	patch := types.ReportPatch{Status: &status, RejectedAt: &now}
	if reason != "" {
		patch.RejectionReason = &reason
	} else {
		reason = types.DefaultRejectionReason
	}

	return s.transition(ctx, id, patch, fmt.Sprintf("Report rejected: %s", reason))
}

func (s *Synchronizer) AcceptMission(ctx context.Context, id string) (*types.Report, error) {
	mission := types.MissionStatusActive
	now := s.now()

	return s.transition(ctx, id, types.ReportPatch{
		MissionStatus: &mission,
		AcceptedAt:    &now,
	}, "Mission is now active. Begin rescue operations.")
}

func (s *Synchronizer) CompleteMission(ctx context.Context, id string) (*types.Report, error) {
	mission := types.MissionStatusCompleted
	now := s.now()

	return s.transition(ctx, id, types.ReportPatch{
		MissionStatus: &mission,
		CompletedAt:   &now,
	}, "Great work! Mission marked as complete.")
}

func (s *Synchronizer) AddContact(ctx context.Context, in types.ContactInput) (*types.Contact, error) {
	if in.Relation == "" {
		in.Relation = types.DefaultContactRelation
	}

	contact, err := s.api.CreateContact(ctx, in)
	if err != nil {
		s.notifyFailure("Could not save contact", err)
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	cp := *contact
	s.contacts = append(s.contacts, &cp)
	s.mu.Unlock()

	s.reconcileAsync(ctx)
	return contact, nil
}

// Watch refreshes the cache every interval until ctx is cancelled.
func (s *Synchronizer) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}

	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(interval).SingletonMode().StartImmediately().Do(func() {
		if err := s.Refresh(ctx); err != nil {
			s.logger.WithError(err).Debug("scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()

	return nil
}

// WaitIdle blocks until every background reconciliation has finished.
func (s *Synchronizer) WaitIdle() {
	s.background.Wait()
}

func (s *Synchronizer) transition(ctx context.Context, id string, patch types.ReportPatch, success string) (*types.Report, error) {
	report, err := s.api.PatchReport(ctx, id, patch)
	if err != nil {
		s.notifyFailure("Update failed", err)
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	for i, r := range s.reports {
		if r != nil && r.ID == id {
			s.reports[i] = report.Clone()
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Notify(NoticeSuccess, "Success", success)
	s.reconcileAsync(ctx)

	return report, nil
}

func (s *Synchronizer) reconcileAsync(ctx context.Context) {
	if !s.reconcile {
		return
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
		defer cancel()

		if err := s.Refresh(ctx); err != nil {
			s.logger.WithError(err).Debug("background reconcile failed")
		}
	}()
}

func (s *Synchronizer) notifyFailure(title string, err error) {
	var apiErr *APIError

	switch {
	case errors.Is(err, ErrConnectivity):
		s.notifier.Notify(NoticeError, "Connection Error", "Could not reach server. Check if backend is running.")
	case errors.As(err, &apiErr):
		s.notifier.Notify(NoticeError, title, apiErr.Message)
	default:
		s.notifier.Notify(NoticeError, title, err.Error())
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return make([]T, 0)
	}
	return in
}
