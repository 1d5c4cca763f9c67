package ml

import (
	"strings"
	"testing"
)

func TestReasoningTriggers(t *testing.T) {
	tests := []struct {
		name       string
		obs        Observation
		level      OccupancyLevel
		confidence float64
		contains   []string
	}{
		{
			name:       "weekend",
			obs:        derived(5, 10, 50),
			level:      Medium,
			confidence: 60,
			contains:   []string{"It's Saturday", "minimal student presence on weekends"},
		},
		{
			name:       "off hours early",
			obs:        derived(1, 7, 50),
			level:      Medium,
			confidence: 60,
			contains:   []string{"outside standard heavy-traffic academic hours"},
		},
		{
			name:       "off hours late",
			obs:        derived(2, 18, 50),
			level:      Medium,
			confidence: 60,
			contains:   []string{"outside standard heavy-traffic academic hours"},
		},
		{
			name:       "confident high",
			obs:        derived(2, 11, 90),
			level:      High,
			confidence: 95,
			contains:   []string{"High-confidence match with past Wednesday peak performance datasets"},
		},
		{
			name:       "very low attendance",
			obs:        derived(3, 10, 10),
			level:      Low,
			confidence: 70,
			contains:   []string{"Projected attendance is very low"},
		},
		{
			name:       "fallback",
			obs:        derived(1, 10, 45),
			level:      Medium,
			confidence: 55,
			contains:   []string{"Standard Medium occupancy pattern detected based on Tuesday academic schedules"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasoningFor(tt.obs, tt.level, tt.confidence)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("reasoning %q missing %q", got, want)
				}
			}
		})
	}
}

func TestReasoningStacksTriggers(t *testing.T) {
	// Sunday at 08:00 with near-zero attendance trips three rules at once.
	got := reasoningFor(derived(6, 8, 2), Low, 90)

	for _, want := range []string{
		"It's Sunday",
		"outside standard heavy-traffic academic hours",
		"Projected attendance is very low",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("stacked reasoning %q missing %q", got, want)
		}
	}

	// High-confidence-High must not fire for a Low prediction.
	if strings.Contains(got, "peak performance") {
		t.Errorf("High trigger fired for Low prediction: %q", got)
	}
}

func TestReasoningDeterministic(t *testing.T) {
	o := derived(5, 19, 3)
	if reasoningFor(o, Low, 88) != reasoningFor(o, Low, 88) {
		t.Error("identical inputs produced different reasoning")
	}
}

func derived(day, hour int, attendance float64) Observation {
	o := Observation{Day: day, Hour: hour, Attendance: attendance}
	o.Derive()
	return o
}
