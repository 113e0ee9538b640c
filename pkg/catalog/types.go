// Package catalog talks to the CCHDO metadata service and turns its JSON
// responses into typed cruise and file records at the boundary.
package catalog

import "github.com/samber/lo"

// File is one file record from the catalog's /api/v1/file/all listing.
type File struct {
	ID          int      `json:"id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	DataType    string   `json:"data_type"`
	DataFormat  string   `json:"data_format"`
	FilePath    string   `json:"file_path"`
	FileHash    string   `json:"file_hash"` // hex-encoded sha256 of the file content
}

// Participant is one member of a cruise's science party.
type Participant struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Collections groups the tags a cruise belongs to.
type Collections struct {
	WOCELines []string `json:"woce_lines"`
	Oceans    []string `json:"oceans"`
	Programs  []string `json:"programs"`
	Groups    []string `json:"groups"`
}

// Note is one entry of a cruise's data history.
type Note struct {
	Date     string   `json:"date"`
	Name     string   `json:"name"`
	DataType string   `json:"data_type"`
	Summary  string   `json:"summary"`
	Action   string   `json:"action"`
	Body     []string `json:"body"`
}

// Cruise is one cruise record from the catalog's /api/v1/cruise/all listing.
// FileIDs reference File.ID values from the file listing.
type Cruise struct {
	Expocode     string        `json:"expocode"`
	StartDate    string        `json:"startDate"`
	EndDate      string        `json:"endDate"`
	Ship         string        `json:"ship"`
	Country      string        `json:"country"`
	Participants []Participant `json:"participants"`
	Collections  Collections   `json:"collections"`
	Notes        []Note        `json:"notes"`
	FileIDs      []int         `json:"files"`
}

// ParticipantsByRole returns the participants with the given role, in catalog order.
func (c *Cruise) ParticipantsByRole(role string) []Participant {
	return lo.Filter(c.Participants, func(p Participant, _ int) bool {
		return p.Role == role
	})
}
