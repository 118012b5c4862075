package service

import (
	"context"
	"errors"
	"reflect"

	"rescuelink/internal/lifecycle"
	"rescuelink/internal/store"
	"rescuelink/internal/utils"
	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
)

// errUnchanged aborts an update whose transition was a no-op so the document
// is not rewritten.
var errUnchanged = errors.New("report unchanged")

type ReportService struct {
	store   *store.RecordStore
	machine *lifecycle.Machine
	logger  *logrus.Logger
	newID   func() string
}

func NewReportService(store *store.RecordStore, machine *lifecycle.Machine, logger *logrus.Logger) *ReportService {
	return &ReportService{
		store:   store,
		machine: machine,
		logger:  logger,
		newID:   utils.NanoID,
	}
}

// List returns the reports matching filter, newest first.
func (s *ReportService) List(ctx context.Context, filter types.ReportFilter) []*types.Report {
	doc := s.store.Load(ctx)

	out := make([]*types.Report, 0, len(doc.Reports))
	for _, r := range doc.Reports {
		if r != nil && filter.Match(r) {
			out = append(out, r)
		}
	}

	return out
}

func (s *ReportService) Report(ctx context.Context, id string) (*types.Report, error) {
	doc := s.store.Load(ctx)

	idx := doc.ReportIndex(id)
	if idx < 0 {
		return nil, types.ErrReportNotFound
	}

	return doc.Reports[idx], nil
}

func (s *ReportService) Views(ctx context.Context) types.Views {
	return types.Partition(s.store.Load(ctx).Reports)
}

// Submit stores a new pending report at the head of the collection.
func (s *ReportService) Submit(ctx context.Context, sub types.ReportSubmission) (*types.Report, error) {
	report := s.machine.Open(s.newID(), sub)

	err := s.store.Update(ctx, func(doc *types.Document) error {
		for doc.ReportIndex(report.ID) >= 0 {
			report.ID = s.newID()
		}
		doc.Reports = append([]*types.Report{report.Clone()}, doc.Reports...)
		return nil
	})
	if err != nil {
		return nil, utils.WrapError(err, "failed to submit report")
	}

	entry := s.logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"type":      report.Type,
		"sos":       report.IsEmergencySOS,
	})

	if report.IsEmergencySOS {
		entry.WithFields(logrus.Fields{
			"location":    report.Location,
			"description": report.Description,
			"time":        report.Time,
		}).Warn("emergency SOS report received")
	} else {
		entry.Info("report submitted")
	}

	return report, nil
}

// Transition applies every transition implied by patch to report id and
// returns the updated record.
func (s *ReportService) Transition(ctx context.Context, id string, patch types.ReportPatch) (*types.Report, error) {
	var updated *types.Report

	err := s.store.Update(ctx, func(doc *types.Document) error {
		idx := doc.ReportIndex(id)
		if idx < 0 {
			return types.ErrReportNotFound
		}

		current := doc.Reports[idx]
		candidate := current.Clone()
		if err := s.machine.Apply(candidate, patch); err != nil {
			return err
		}

		updated = candidate.Clone()
		if reflect.DeepEqual(current, candidate) {
			return errUnchanged
		}

		doc.Reports[idx] = candidate
		return nil
	})

	switch {
	case errors.Is(err, errUnchanged):
		s.logger.WithField("report_id", id).Debug("transition was a no-op")
		return updated, nil
	case err != nil:
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"report_id":      id,
		"status":         updated.Status,
		"mission_status": updated.MissionStatus,
	}).Info("report updated")

	return updated, nil
}
