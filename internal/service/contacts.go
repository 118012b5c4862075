package service

import (
	"context"

	"rescuelink/internal/store"
	"rescuelink/internal/utils"
	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
)

// ContactService is the append-only registry of a reporter's emergency
// contacts.
type ContactService struct {
	store  *store.RecordStore
	logger *logrus.Logger
	newID  func() string
}

func NewContactService(store *store.RecordStore, logger *logrus.Logger) *ContactService {
	return &ContactService{store: store, logger: logger, newID: utils.NanoID}
}

func (s *ContactService) List(ctx context.Context) []*types.Contact {
	return s.store.Load(ctx).Contacts
}

func (s *ContactService) Create(ctx context.Context, in types.ContactInput) (*types.Contact, error) {
	contact := &types.Contact{
		ID:          s.newID(),
		Name:        in.Name,
		Phone:       in.Phone,
		Relation:    in.Relation,
		IsEmergency: false,
	}

	err := s.store.Update(ctx, func(doc *types.Document) error {
		for contactIndex(doc.Contacts, contact.ID) >= 0 {
			contact.ID = s.newID()
		}
		saved := *contact
		doc.Contacts = append(doc.Contacts, &saved)
		return nil
	})
	if err != nil {
		return nil, utils.WrapError(err, "failed to create contact")
	}

	s.logger.WithField("contact_id", contact.ID).Info("contact created")

	return contact, nil
}

func contactIndex(contacts []*types.Contact, id string) int {
	for i, c := range contacts {
		if c != nil && c.ID == id {
			return i
		}
	}
	return -1
}
