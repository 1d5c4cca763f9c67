package ml

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"
	"testing"
)

// separableData builds a corpus where attendance alone determines the class.
func separableData(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		attendance := float64(rng.Intn(101))
		o := Observation{
			Day:        rng.Intn(7),
			Hour:       8 + rng.Intn(14),
			Attendance: attendance,
		}
		o.Derive()
		X[i] = o.Features()
		y[i] = int(LevelFromAttendance(attendance))
	}
	return X, y
}

func TestForestLearnsSeparableData(t *testing.T) {
	X, y := separableData(300, 1)
	f := TrainForest(X, y, 30, 3, 42)

	correct := 0
	for i, x := range X {
		if idx, _ := f.Predict(x); idx == y[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(X))
	if accuracy < 0.95 {
		t.Errorf("training accuracy %.3f on separable data, want >= 0.95", accuracy)
	}
}

func TestForestProbabilitiesSumToOne(t *testing.T) {
	X, y := separableData(200, 2)
	f := TrainForest(X, y, 20, 3, 42)

	for _, x := range X[:20] {
		probs := f.Proba(x)
		if len(probs) != 3 {
			t.Fatalf("got %d probabilities, want 3", len(probs))
		}
		sum := 0.0
		for _, p := range probs {
			if p < 0 || p > 1 {
				t.Errorf("probability %v out of range", p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("probabilities sum to %v, want 1", sum)
		}
	}
}

func TestForestDeterministicForFixedSeed(t *testing.T) {
	X, y := separableData(200, 3)

	a := TrainForest(X, y, 15, 3, 42)
	b := TrainForest(X, y, 15, 3, 42)

	for i, x := range X {
		pa := a.Proba(x)
		pb := b.Proba(x)
		for c := range pa {
			if pa[c] != pb[c] {
				t.Fatalf("row %d class %d: %v != %v for identical seed", i, c, pa[c], pb[c])
			}
		}
	}
}

func TestForestImportancesNormalized(t *testing.T) {
	X, y := separableData(300, 4)
	f := TrainForest(X, y, 20, 3, 42)

	imp := f.Importances()
	if len(imp) != len(FeatureNames) {
		t.Fatalf("got %d importances, want %d", len(imp), len(FeatureNames))
	}

	sum := 0.0
	for i, v := range imp {
		if v < 0 {
			t.Errorf("importance[%d] = %v, want >= 0", i, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("importances sum to %v, want 1", sum)
	}

	// Attendance fully determines the labels, so it must dominate.
	attendanceIdx := 3
	for i, v := range imp {
		if i != attendanceIdx && v > imp[attendanceIdx] {
			t.Errorf("feature %s (%.4f) outranks attendance (%.4f)", FeatureNames[i], v, imp[attendanceIdx])
		}
	}
}

func TestForestGobRoundTrip(t *testing.T) {
	X, y := separableData(150, 5)
	f := TrainForest(X, y, 10, 3, 42)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded Forest
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	for _, x := range X[:20] {
		wantIdx, wantProbs := f.Predict(x)
		gotIdx, gotProbs := decoded.Predict(x)
		if gotIdx != wantIdx {
			t.Fatalf("decoded forest predicts %d, want %d", gotIdx, wantIdx)
		}
		for c := range wantProbs {
			if gotProbs[c] != wantProbs[c] {
				t.Fatalf("decoded probability differs: %v != %v", gotProbs[c], wantProbs[c])
			}
		}
	}
}

func TestGini(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		counts []int
		want   float64
	}{
		{"pure node", 10, []int{10, 0, 0}, 0},
		{"even two-way", 10, []int{5, 5, 0}, 0.5},
		{"empty node", 0, []int{0, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gini(tt.n, tt.counts); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("gini(%d, %v) = %v, want %v", tt.n, tt.counts, got, tt.want)
			}
		})
	}
}
