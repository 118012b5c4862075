package types

const CurrentSchemaVersion = 1

// Document is the single unit of durable state.
type Document struct {
	SchemaVersion int        `json:"schemaVersion"`
	Revision      int64      `json:"revision"`
	Reports       []*Report  `json:"reports"`
	Contacts      []*Contact `json:"contacts"`

	// ETag is the backend concurrency token for stores that hand out their
	// own (S3). It is never serialized.
	ETag string `json:"-"`
}

func NewDocument() *Document {
	return &Document{
		SchemaVersion: CurrentSchemaVersion,
		Reports:       make([]*Report, 0),
		Contacts:      make([]*Contact, 0),
	}
}

// Normalize fills in defaults for documents written by older versions: nil
// collections and reports that predate the mission axis.
func (d *Document) Normalize() {
	if d.SchemaVersion == 0 {
		d.SchemaVersion = CurrentSchemaVersion
	}
	if d.Reports == nil {
		d.Reports = make([]*Report, 0)
	}
	if d.Contacts == nil {
		d.Contacts = make([]*Contact, 0)
	}
	for _, r := range d.Reports {
		if r != nil && r.MissionStatus == "" {
			r.MissionStatus = MissionStatusNone
		}
	}
}

func (d *Document) ReportIndex(id string) int {
	for i, r := range d.Reports {
		if r != nil && r.ID == id {
			return i
		}
	}
	return -1
}
