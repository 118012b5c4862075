package seed

import (
	"context"
	"fmt"

	"rescuelink/internal/store"
	"rescuelink/pkg/types"
)

var demoContacts = []*types.Contact{
	{ID: "fR3kT9wQ1zXc5Vb7Nm2Lp", Name: "Ama Mensah", Phone: "+233244000001", Relation: "Sister"},
	{ID: "hY6uI0oP4aSd8Fg2Jk1Lz", Name: "Kwame Boateng", Phone: "+233200000002", Relation: types.DefaultContactRelation},
}

func SeedContacts(ctx context.Context, rs *store.RecordStore) (int, error) {
	created := 0

	err := rs.Update(ctx, func(doc *types.Document) error {
		created = 0
		existing := make(map[string]bool, len(doc.Contacts))
		for _, c := range doc.Contacts {
			if c == nil {
				continue
			}
			existing[c.ID] = true
		}

		for _, c := range demoContacts {
			if existing[c.ID] {
				continue
			}
			cp := *c
			doc.Contacts = append(doc.Contacts, &cp)
			created++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	fmt.Printf("Demo contacts seeded: %d created\n", created)
	return created, nil
}
