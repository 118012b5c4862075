package types

type View string

const (
	ViewPending   View = "pending"
	ViewApproved  View = "approved"
	ViewActive    View = "active"
	ViewCompleted View = "completed"
	ViewRejected  View = "rejected"
)

var AllViews = []View{ViewPending, ViewApproved, ViewActive, ViewCompleted, ViewRejected}

// Views are the derived partitions of one report collection. Every report
// lands in exactly one of them.
type Views struct {
	Pending   []*Report `json:"pending"`
	Approved  []*Report `json:"approved"`
	Active    []*Report `json:"active"`
	Completed []*Report `json:"completed"`
	Rejected  []*Report `json:"rejected"`
	Total     int       `json:"total"`
}

// Classify returns the view a report belongs to. Mission state wins over
// disposition so that malformed legacy records still land in one bucket.
func Classify(r *Report) View {
	switch {
	case r.MissionStatus == MissionStatusCompleted:
		return ViewCompleted
	case r.MissionStatus == MissionStatusActive:
		return ViewActive
	case r.Status == ReportStatusApproved:
		return ViewApproved
	case r.Status == ReportStatusRejected:
		return ViewRejected
	default:
		return ViewPending
	}
}

// Partition splits reports into views preserving collection order.
func Partition(reports []*Report) Views {
	v := Views{
		Pending:   make([]*Report, 0),
		Approved:  make([]*Report, 0),
		Active:    make([]*Report, 0),
		Completed: make([]*Report, 0),
		Rejected:  make([]*Report, 0),
	}

	for _, r := range reports {
		if r == nil {
			continue
		}
		v.Total++
		switch Classify(r) {
		case ViewCompleted:
			v.Completed = append(v.Completed, r)
		case ViewActive:
			v.Active = append(v.Active, r)
		case ViewApproved:
			v.Approved = append(v.Approved, r)
		case ViewRejected:
			v.Rejected = append(v.Rejected, r)
		default:
			v.Pending = append(v.Pending, r)
		}
	}

	return v
}

func (v Views) Get(name View) []*Report {
	switch name {
	case ViewPending:
		return v.Pending
	case ViewApproved:
		return v.Approved
	case ViewActive:
		return v.Active
	case ViewCompleted:
		return v.Completed
	case ViewRejected:
		return v.Rejected
	}
	return nil
}
