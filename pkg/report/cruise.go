// Package report renders the human-readable side of a snapshot: per-cruise
// metadata text records, the cruise index table and the optional collection
// frequency reports.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/samber/lo"
)

// InfoText renders one cruise's metadata as the free-text record archived as
// <expocode>_info.txt: identifiers, dates, science party split by role, the
// comma-joined collection tags and the note history sorted chronologically.
func InfoText(cruise catalog.Cruise) string {
	chief := participantNames(cruise.ParticipantsByRole("Chief Scientist"))
	coChief := participantNames(cruise.ParticipantsByRole("Co-Chief Scientist"))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n=============\n", cruise.Expocode)
	fmt.Fprintf(&b, "Dates: %s/%s\n", cruise.StartDate, cruise.EndDate)
	fmt.Fprintf(&b, "Ship: %s\n", cruise.Ship)
	fmt.Fprintf(&b, "Chief Scientist(s): %s\n", strings.Join(chief, "; "))
	fmt.Fprintf(&b, "Co Chief Scientist(s): %s\n", strings.Join(coChief, "; "))
	fmt.Fprintf(&b, "Country: %s\n", cruise.Country)
	fmt.Fprintf(&b, "WOCE Lines: %s\n", strings.Join(cruise.Collections.WOCELines, ", "))
	fmt.Fprintf(&b, "Oceans: %s\n", strings.Join(cruise.Collections.Oceans, ", "))
	fmt.Fprintf(&b, "Programs: %s\n", strings.Join(cruise.Collections.Programs, ", "))
	fmt.Fprintf(&b, "Groups: %s\n", strings.Join(cruise.Collections.Groups, ", "))
	fmt.Fprintf(&b, "\nHistory\n-------\n%s\n", historyText(cruise.Notes))
	return b.String()
}

// historyText renders the note history as dated free-text blocks, oldest first.
func historyText(notes []catalog.Note) string {
	sorted := make([]catalog.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	var lines []string
	for _, note := range sorted {
		lines = append(lines, fmt.Sprintf("Date: %s", note.Date))
		lines = append(lines, fmt.Sprintf("From: %s", note.Name))
		lines = append(lines, fmt.Sprintf("Subject: %s - %s - %s", note.DataType, note.Summary, note.Action))
		lines = append(lines, "")
		lines = append(lines, note.Body...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func participantNames(participants []catalog.Participant) []string {
	return lo.Map(participants, func(p catalog.Participant, _ int) string {
		return p.Name
	})
}
