package types

type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Relation    string `json:"relation"`
	IsEmergency bool   `json:"isEmergency"`
}

type ContactInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

// DefaultContactRelation is applied by clients when the reporter leaves the
// relation blank.
const DefaultContactRelation = "Friend"
