package ml

// OccupancyLevel is the ordinal classification of classroom usage.
type OccupancyLevel int

const (
	Low OccupancyLevel = iota
	Medium
	High
)

func (l OccupancyLevel) String() string {
	switch l {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	default:
		return "High"
	}
}

// Recommendation returns the fixed lighting/HVAC action for the level.
func (l OccupancyLevel) Recommendation() string {
	switch l {
	case Low:
		return "Lights OFF, AC OFF (Eco Mode)"
	case Medium:
		return "Lights ON (50%), AC OFF (Fan only)"
	default:
		return "Full Power: Lights ON, AC ON"
	}
}

// LevelFromAttendance maps an attendance value onto an occupancy class using
// the fixed thresholds: below 30 is Low, 30 through 60 is Medium, above 60
// is High.
func LevelFromAttendance(attendance float64) OccupancyLevel {
	switch {
	case attendance < 30:
		return Low
	case attendance <= 60:
		return Medium
	default:
		return High
	}
}

// LevelFromIndex converts a class index back to a level. Indices outside
// 0..2 never come out of the classifier; anything above Medium is High.
func LevelFromIndex(idx int) OccupancyLevel {
	switch idx {
	case 0:
		return Low
	case 1:
		return Medium
	default:
		return High
	}
}
