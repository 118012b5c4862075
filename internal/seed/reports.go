package seed

import (
	"context"
	"fmt"
	"time"

	"rescuelink/internal/lifecycle"
	"rescuelink/internal/store"
	"rescuelink/internal/utils"
	"rescuelink/pkg/types"
)

type demoReport struct {
	ID          string
	Type        string
	Description string
	Location    string
	SOS         bool
	Severity    types.Severity
	Reason      string
	Steps       []lifecycle.Transition
}

// Fixed ids keep reseeding idempotent; generate new ones with `rescuelink nanoid`.
var demoReports = []demoReport{
	{
		ID:          "Jc1Z8qkqKQbY0xw0T7d4m",
		Type:        "Flood",
		Description: "[seed] Water rising fast on the main road, two cars stranded.",
		Location:    "Riverside Drive",
	},
	{
		ID:          "s7Lr0mWc2pNfV9hQe3KxA",
		Type:        "Medical Emergency",
		Description: "[seed] Elderly man collapsed near the bus station.",
		Location:    "Central Bus Terminal",
		SOS:         true,
	},
	{
		ID:          "bE4uYt6GvR1oZk8Wn2PcD",
		Type:        "Fire",
		Description: "[seed] Smoke coming from the market stalls on the east side.",
		Location:    "Makola Market",
		Severity:    types.SeverityCritical,
		Steps:       []lifecycle.Transition{lifecycle.Approve},
	},
	{
		ID:          "p9Hq3XsJ5vT0aLm1Cz7Ni",
		Type:        "Earthquake",
		Description: "[seed] Cracks in the school building after the tremor.",
		Location:    "Hilltop Primary School",
		Severity:    types.SeverityHigh,
		Steps:       []lifecycle.Transition{lifecycle.Approve, lifecycle.AcceptMission},
	},
	{
		ID:          "K2dWf8Rg0yUe6Ib4Qo1Sj",
		Type:        "Accident",
		Description: "[seed] Motorbike collision at the junction, rider injured.",
		Location:    "Kaneshie Junction",
		Severity:    types.SeverityMedium,
		Steps:       []lifecycle.Transition{lifecycle.Approve, lifecycle.AcceptMission, lifecycle.CompleteMission},
	},
	{
		ID:          "z5Nc7Bv1Mx3Lk9Jh0Gf2D",
		Type:        "Other",
		Description: "[seed] Loud noise from neighbours.",
		Location:    types.UnknownLocation,
		Reason:      "Not an emergency",
		Steps:       []lifecycle.Transition{lifecycle.Reject},
	},
}

// SeedReports inserts the demo reports that are not stored yet. Each one is
// walked through the state machine so its timestamps are consistent.
func SeedReports(ctx context.Context, rs *store.RecordStore, machine *lifecycle.Machine) (int, error) {
	created := 0

	err := rs.Update(ctx, func(doc *types.Document) error {
		created = 0
		now := time.Now()

		for i := len(demoReports) - 1; i >= 0; i-- {
			demo := demoReports[i]
			if doc.ReportIndex(demo.ID) >= 0 {
				continue
			}

			report := machine.Open(demo.ID, types.ReportSubmission{
				Type:           demo.Type,
				Description:    demo.Description,
				Location:       demo.Location,
				IsEmergencySOS: demo.SOS,
			})

			for j, step := range demo.Steps {
				at := now.Add(-time.Duration(len(demo.Steps)-j) * time.Hour)
				if err := machine.Apply(report, patchFor(demo, step, at)); err != nil {
					return utils.WrapErrorf(err, "failed to walk demo report %s", demo.ID)
				}
			}

			doc.Reports = append([]*types.Report{report}, doc.Reports...)
			created++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	fmt.Printf("Demo reports seeded: %d created\n", created)
	return created, nil
}

func patchFor(demo demoReport, step lifecycle.Transition, at time.Time) types.ReportPatch {
	switch step {
	case lifecycle.Approve:
		status := types.ReportStatusApproved
		patch := types.ReportPatch{Status: &status, ApprovedAt: &at}
		if demo.Severity != "" {
			patch.Severity = &demo.Severity
		}
		return patch
	case lifecycle.Reject:
		status := types.ReportStatusRejected
		patch := types.ReportPatch{Status: &status, RejectedAt: &at}
		if demo.Reason != "" {
			patch.RejectionReason = &demo.Reason
		}
		return patch
	case lifecycle.AcceptMission:
		mission := types.MissionStatusActive
		return types.ReportPatch{MissionStatus: &mission, AcceptedAt: &at}
	default:
		mission := types.MissionStatusCompleted
		return types.ReportPatch{MissionStatus: &mission, CompletedAt: &at}
	}
}

// Reset replaces the stored document with an empty one.
func Reset(ctx context.Context, rs *store.RecordStore) error {
	err := rs.Update(ctx, func(doc *types.Document) error {
		doc.Reports = make([]*types.Report, 0)
		doc.Contacts = make([]*types.Contact, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset record store: %w", err)
	}

	fmt.Println("Record store reset")
	return nil
}
