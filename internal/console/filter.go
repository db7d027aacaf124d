package console

import (
	"math"
	"strconv"
	"strings"

	"github.com/rgpvpanel/console/internal/model"
)

// FilterResources returns the resources whose subject code starts with
// branch and whose semester equals semester, in their original order.
// model.FilterAll disables either dimension. The prefix test is case
// sensitive: "cs-302" does not match "CS". The semester is read as a number
// (surrounding space ignored, empty meaning 0); a value that is not a number
// matches nothing.
func FilterResources(resources []model.Resource, branch, semester string) []model.Resource {
	semAll := semester == model.FilterAll
	var sem float64
	if !semAll {
		sem = parseSemester(semester)
	}
	out := make([]model.Resource, 0, len(resources))
	for _, r := range resources {
		if branch != model.FilterAll && !strings.HasPrefix(r.SubjectCode, branch) {
			continue
		}
		if !semAll && float64(r.Semester) != sem {
			continue
		}
		out = append(out, r)
	}
	return out
}

func parseSemester(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
