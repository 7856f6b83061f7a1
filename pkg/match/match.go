package match

import (
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/racemates/racemates-go/pkg/model"
)

// Compute intersects the roster with the pro list by participant id. Name,
// car number and class come from the live roster, the description from the
// pro list entry. Roster entries without a pro list match are omitted.
// The result ordering depends only on car number and id, never on the input
// order.
func Compute(roster []model.Participant, list *model.ProList) []model.Match {
	if list == nil || len(list.Records) == 0 {
		return []model.Match{}
	}
	matches := lo.FilterMap(roster, func(p model.Participant, _ int) (model.Match, bool) {
		rec, found := list.Records[p.ID]
		if !found {
			return model.Match{}, false
		}
		return model.Match{Participant: p, Description: rec.Description}, true
	})
	sort.Slice(matches, func(i, j int) bool {
		return matchLess(&matches[i], &matches[j])
	})
	return matches
}

// matchLess orders by ascending car number. Numeric car numbers compare
// numerically and sort before non-numeric ones; non-numeric car numbers
// compare as strings. Ties are broken by participant id.
func matchLess(a, b *model.Match) bool {
	na, aNumeric := parseCarNumber(a.Participant.CarNumber)
	nb, bNumeric := parseCarNumber(b.Participant.CarNumber)
	switch {
	case aNumeric && bNumeric:
		if na != nb {
			return na < nb
		}
	case aNumeric:
		return true
	case bNumeric:
		return false
	default:
		if a.Participant.CarNumber != b.Participant.CarNumber {
			return a.Participant.CarNumber < b.Participant.CarNumber
		}
	}
	return a.Participant.ID < b.Participant.ID
}

func parseCarNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
