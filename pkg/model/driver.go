package model

// Participant is one validated entry of the session roster.
// ID is the iRacing customer id and unique within a session.
type Participant struct {
	ID        int    `json:"userId"`
	Name      string `json:"name"`
	CarNumber string `json:"carNumber"`
	CarClass  string `json:"carClass"`
}

// Match pairs a roster participant with the description from the pro list.
// Name, car number and class come from the live roster, the description from
// the pro list entry.
type Match struct {
	Participant Participant `json:"participant"`
	Description string      `json:"description"`
}
