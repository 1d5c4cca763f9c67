package ml

import (
	"fmt"
	"strings"
)

// reasoningFor assembles a natural-language justification from the derived
// features and the predicted level. This is a fixed rule set, not model
// introspection: every applicable trigger contributes a sentence, in order,
// and the output is fully deterministic.
func reasoningFor(o Observation, level OccupancyLevel, confidence float64) string {
	day := o.DayName()

	var reasons []string
	if o.IsWeekend == 1 {
		reasons = append(reasons,
			fmt.Sprintf("It's %s, and behavioral history shows minimal student presence on weekends.", day))
	}
	if o.Hour < 9 || o.Hour > 17 {
		reasons = append(reasons,
			"Current time is outside standard heavy-traffic academic hours.")
	}
	if level == High && confidence > 80 {
		reasons = append(reasons,
			fmt.Sprintf("High-confidence match with past %s peak performance datasets.", day))
	}
	if level == Low && o.Attendance < 20 {
		reasons = append(reasons,
			"Projected attendance is very low, aligning with historical efficiency profiles.")
	}

	if len(reasons) == 0 {
		reasons = append(reasons,
			fmt.Sprintf("Standard %s occupancy pattern detected based on %s academic schedules.", level, day))
	}

	return strings.Join(reasons, " ")
}
