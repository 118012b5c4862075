package store

import (
	"context"
	"errors"
	"fmt"

	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
)

// Backend persists the whole document. Save must only succeed when the stored
// revision still equals doc.Revision; on success it advances doc.Revision.
type Backend interface {
	Load(ctx context.Context) (*types.Document, error)
	Save(ctx context.Context, doc *types.Document) error
	Name() string
}

// RecordStore is the single durable unit holding reports and contacts.
//
// Every mutation goes through Update, which holds the document lock for the
// whole load-mutate-save cycle and retries on revision conflicts. Load and
// Save keep the reference recovery policy: faults are logged, never returned.
type RecordStore struct {
	backend    Backend
	locker     Locker
	logger     *logrus.Logger
	maxRetries int
}

func NewRecordStore(backend Backend, locker Locker, logger *logrus.Logger, maxRetries int) *RecordStore {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &RecordStore{
		backend:    backend,
		locker:     locker,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Load returns the current document. A missing document is initialized and
// persisted under the document lock; any other fault is logged and the empty
// shape returned.
func (s *RecordStore) Load(ctx context.Context) *types.Document {
	doc, err := s.backend.Load(ctx)
	if err == nil {
		doc.Normalize()
		return doc
	}

	if errors.Is(err, types.ErrDocumentNotExist) {
		return s.initialize(ctx)
	}

	s.logger.WithError(err).WithField("backend", s.backend.Name()).Error("failed to load document")
	return types.NewDocument()
}

// initialize writes an empty document unless a writer holding the lock got
// there first, in which case its document is returned untouched.
func (s *RecordStore) initialize(ctx context.Context) *types.Document {
	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("backend", s.backend.Name()).Warn("skipped document initialization, lock unavailable")
		return types.NewDocument()
	}
	defer unlock()

	doc, err := s.backend.Load(ctx)
	switch {
	case err == nil:
		doc.Normalize()
		return doc
	case !errors.Is(err, types.ErrDocumentNotExist):
		s.logger.WithError(err).WithField("backend", s.backend.Name()).Error("failed to load document")
		return types.NewDocument()
	}

	doc = types.NewDocument()
	s.Save(ctx, doc)
	return doc
}

// Save persists doc, overwriting prior content. Failures are logged only.
func (s *RecordStore) Save(ctx context.Context, doc *types.Document) {
	if err := s.backend.Save(ctx, doc); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"backend":  s.backend.Name(),
			"revision": doc.Revision,
		}).Error("failed to save document")
	}
}

// Update runs fn against a freshly loaded document under the document lock
// and saves the result. fn may run more than once when a concurrent writer
// (another process without the shared lock) wins the revision race, so it
// must derive everything from the document it is given. An error from fn
// aborts the update without saving.
//
// Unlike Load, a document that exists but cannot be read aborts the update
// with ErrStoreUnavailable rather than overwriting it with an empty one.
func (s *RecordStore) Update(ctx context.Context, fn func(doc *types.Document) error) error {
	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreUnavailable, err)
	}
	defer unlock()

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		doc, err := s.backend.Load(ctx)
		switch {
		case errors.Is(err, types.ErrDocumentNotExist):
			doc = types.NewDocument()
		case err != nil:
			s.logger.WithError(err).WithField("backend", s.backend.Name()).Error("failed to load document for update")
			return fmt.Errorf("%w: load: %w", types.ErrStoreUnavailable, err)
		}
		doc.Normalize()

		if err := fn(doc); err != nil {
			return err
		}

		err = s.backend.Save(ctx, doc)
		if err == nil {
			return nil
		}

		if errors.Is(err, types.ErrRevisionConflict) {
			s.logger.WithFields(logrus.Fields{
				"backend": s.backend.Name(),
				"attempt": attempt + 1,
			}).Warn("document revision conflict, retrying update")
			continue
		}

		s.logger.WithError(err).WithField("backend", s.backend.Name()).Error("failed to save document")
		return fmt.Errorf("%w: save: %w", types.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%w: %w after %d attempts", types.ErrStoreUnavailable, types.ErrRevisionConflict, s.maxRetries+1)
}
