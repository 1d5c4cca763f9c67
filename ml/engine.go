package ml

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoHistory is returned when a retrain is requested against an empty
// corpus. The engine stays usable with its last-known-good model.
var ErrNoHistory = errors.New("no history available to train")

const (
	numTrees     = 150
	testFraction = 0.15
	trainSeed    = 42
)

// Engine owns the prediction model and the cumulative history corpus. A
// single lock serializes the digest -> retrain -> persist sequence; reads
// always see the last successfully persisted model.
type Engine struct {
	mu        sync.RWMutex
	history   *HistoryStore
	modelPath string

	forest     *Forest
	lastReport *TrainingReport

	// seededSynthetic is true while the corpus consists only of the
	// cold-start bootstrap, before any real data has been digested.
	seededSynthetic bool
}

// TrainingReport is the immutable metadata snapshot of one retraining run.
// Each successful retrain supersedes the previous report.
type TrainingReport struct {
	Timestamp         time.Time          `json:"timestamp"`
	TotalRecords      int                `json:"total_records"`
	TrainingRecords   int                `json:"training_records"`
	TestRecords       int                `json:"test_records"`
	Accuracy          float64            `json:"accuracy"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	SyntheticSeed     bool               `json:"synthetic_seed"`
}

// Prediction is the result of classifying a single scheduled class.
type Prediction struct {
	Level      OccupancyLevel `json:"-"`
	LevelName  string         `json:"occupancy"`
	LevelIndex int            `json:"occupancy_index"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
}

// BatchPrediction is one row of a bulk classification, carrying the energy
// action used by the dataset review screen.
type BatchPrediction struct {
	Day                string  `json:"day"`
	Hour               string  `json:"hour"`
	PredictedOccupancy string  `json:"predicted_occupancy"`
	Confidence         float64 `json:"confidence"`
	Reasoning          string  `json:"reasoning"`
	Recommendation     string  `json:"recommendation"`
	EnergyAction       string  `json:"energy_action"`
}

// Status is the introspection snapshot for the health surface.
type Status struct {
	ModelType       string          `json:"model_type"`
	IsTrained       bool            `json:"is_trained"`
	KnowledgePoints int             `json:"knowledge_points"`
	SeededSynthetic bool            `json:"seeded_synthetic"`
	LastReport      *TrainingReport `json:"last_report"`
}

// modelBundle is the persisted artifact: the fitted ensemble plus the report
// that produced it, replaced atomically on every successful retrain.
type modelBundle struct {
	Forest          *Forest
	Report          *TrainingReport
	SeededSynthetic bool
}

// NewEngine wires an engine to its persisted corpus and model paths and
// loads the model if one survives from a previous run. A missing or corrupt
// model file is not an error: the first prediction self-initializes.
func NewEngine(historyPath, modelPath string) *Engine {
	e := &Engine{
		history:   NewHistoryStore(historyPath),
		modelPath: modelPath,
	}
	_ = e.loadModel()
	return e
}

// Predict classifies a single scheduled class. With no model loaded it
// seeds and trains first rather than failing.
func (e *Engine) Predict(day, hour, subjectType, attendance string) (Prediction, error) {
	o := NewObservation(day, hour, subjectType, attendance)
	defaultedFieldsTotal.Add(float64(len(o.Defaulted)))

	f, err := e.model()
	if err != nil {
		return Prediction{}, err
	}

	idx, probs := f.Predict(o.Features())
	confidence := round1(probs[idx] * 100)
	level := LevelFromIndex(idx)

	predictionsTotal.Inc()
	return Prediction{
		Level:      level,
		LevelName:  level.String(),
		LevelIndex: idx,
		Confidence: confidence,
		Reasoning:  reasoningFor(o, level, confidence),
	}, nil
}

// PredictBatch classifies every row of an uploaded dataset. Dirty rows
// never abort the batch: the pipeline defaults cover them.
func (e *Engine) PredictBatch(ds *Dataset) ([]BatchPrediction, error) {
	f, err := e.model()
	if err != nil {
		return nil, err
	}

	results := make([]BatchPrediction, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		o := NewObservation(row["day"], row["hour"], row["type"], row["attendance"])
		defaultedFieldsTotal.Add(float64(len(o.Defaulted)))

		idx, probs := f.Predict(o.Features())
		confidence := round1(probs[idx] * 100)
		level := LevelFromIndex(idx)

		action := "Optimized"
		if level == High {
			action = "Full Power"
		}

		results = append(results, BatchPrediction{
			Day:                row["day"],
			Hour:               row["hour"],
			PredictedOccupancy: level.String(),
			Confidence:         confidence,
			Reasoning:          reasoningFor(o, level, confidence),
			Recommendation:     level.Recommendation(),
			EnergyAction:       action,
		})
	}
	batchRowsTotal.Add(float64(len(results)))
	return results, nil
}

// Digest absorbs new labeled or unlabeled rows into the history corpus and
// retrains. The dataset must carry the four raw columns; an empty batch is
// a no-op returning the current report.
func (e *Engine) Digest(ds *Dataset) (*TrainingReport, error) {
	if err := ds.RequireColumns("day", "hour", "type", "attendance"); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(ds.Rows) == 0 {
		if e.lastReport == nil {
			return nil, ErrNoHistory
		}
		return e.lastReport, nil
	}

	obs := make([]Observation, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		o := ObservationFromRow(row)
		defaultedFieldsTotal.Add(float64(len(o.Defaulted)))
		obs = append(obs, o)
	}

	if _, err := e.history.Append(obs); err != nil {
		return nil, err
	}
	e.seededSynthetic = false
	digestsTotal.Inc()

	return e.trainLocked()
}

// Train refits the model from the full persisted corpus.
func (e *Engine) Train() (*TrainingReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trainLocked()
}

// Status reports whether a model is loaded and how much knowledge backs it.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		ModelType:       "Self-Learning RandomForest",
		IsTrained:       e.forest != nil,
		KnowledgePoints: e.history.Count(),
		SeededSynthetic: e.seededSynthetic,
		LastReport:      e.lastReport,
	}
}

// LastReport returns the report of the most recent successful retrain.
func (e *Engine) LastReport() *TrainingReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastReport
}

// model returns the loaded forest, cold-starting the engine on first use.
func (e *Engine) model() (*Forest, error) {
	e.mu.RLock()
	f := e.forest
	e.mu.RUnlock()
	if f != nil {
		return f, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.forest == nil {
		if err := e.initializeLocked(); err != nil {
			return nil, err
		}
	}
	return e.forest, nil
}

// initializeLocked brings an uninitialized engine to an operable state:
// train from surviving history if any, otherwise seed synthetic knowledge.
func (e *Engine) initializeLocked() error {
	obs, err := e.history.Load()
	if err != nil {
		return err
	}
	if len(obs) == 0 {
		if err := e.seedSyntheticLocked(); err != nil {
			return err
		}
	}
	_, err = e.trainLocked()
	return err
}

// seedSyntheticLocked writes the cold-start corpus: every weekday and hour
// 8-21 for both subject types, with weekend slots drawing low attendance,
// weekday daytime (9-16h) drawing high attendance and remaining weekday
// hours drawing moderate-low attendance.
func (e *Engine) seedSyntheticLocked() error {
	rng := rand.New(rand.NewSource(trainSeed))

	var obs []Observation
	for day := 0; day < 7; day++ {
		for hour := 8; hour < 22; hour++ {
			for subjectType := 0; subjectType < 2; subjectType++ {
				var attendance float64
				switch {
				case day >= 5:
					attendance = float64(rng.Intn(15))
				case hour >= 9 && hour <= 16:
					attendance = float64(40 + rng.Intn(55))
				default:
					attendance = float64(5 + rng.Intn(25))
				}

				o := Observation{
					Day:         day,
					Hour:        hour,
					SubjectType: subjectType,
					Attendance:  attendance,
				}
				o.Derive()
				o.Label = LevelFromAttendance(attendance)
				obs = append(obs, o)
			}
		}
	}

	if _, err := e.history.Append(obs); err != nil {
		return err
	}
	e.seededSynthetic = true
	return nil
}

func (e *Engine) trainLocked() (*TrainingReport, error) {
	start := time.Now()

	obs, err := e.history.Load()
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, ErrNoHistory
	}

	X := make([][]float64, len(obs))
	y := make([]int, len(obs))
	for i, o := range obs {
		X[i] = o.Features()
		y[i] = int(o.Label)
	}

	// Reproducible 85/15 split.
	rng := rand.New(rand.NewSource(trainSeed))
	perm := rng.Perm(len(obs))
	testN := int(float64(len(obs)) * testFraction)
	trainN := len(obs) - testN

	trainX := make([][]float64, 0, trainN)
	trainY := make([]int, 0, trainN)
	testX := make([][]float64, 0, testN)
	testY := make([]int, 0, testN)
	for i, idx := range perm {
		if i < trainN {
			trainX = append(trainX, X[idx])
			trainY = append(trainY, y[idx])
		} else {
			testX = append(testX, X[idx])
			testY = append(testY, y[idx])
		}
	}

	forest := TrainForest(trainX, trainY, numTrees, 3, trainSeed)

	// Tiny corpora can leave the held-out split empty; fall back to the
	// training partition so the report still carries a number.
	evalX, evalY := testX, testY
	if len(evalX) == 0 {
		evalX, evalY = trainX, trainY
	}
	correct := 0
	for i, x := range evalX {
		if idx, _ := forest.Predict(x); idx == evalY[i] {
			correct++
		}
	}
	accuracy := round2(float64(correct) / float64(len(evalX)) * 100)

	importance := make(map[string]float64, len(FeatureNames))
	for i, imp := range forest.Importances() {
		importance[FeatureNames[i]] = round4(imp)
	}

	report := &TrainingReport{
		Timestamp:         time.Now().UTC(),
		TotalRecords:      len(obs),
		TrainingRecords:   trainN,
		TestRecords:       testN,
		Accuracy:          accuracy,
		FeatureImportance: importance,
		SyntheticSeed:     e.seededSynthetic,
	}

	if err := e.persistModelLocked(forest, report); err != nil {
		return nil, err
	}

	e.forest = forest
	e.lastReport = report
	trainingDuration.Observe(time.Since(start).Seconds())
	knowledgePoints.Set(float64(len(obs)))
	return report, nil
}

// persistModelLocked writes the fitted model bundle next to the old one and
// renames it into place, so a concurrent load never sees a torn artifact.
func (e *Engine) persistModelLocked(f *Forest, report *TrainingReport) error {
	dir := filepath.Dir(e.modelPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "model-*.gob")
	if err != nil {
		return fmt.Errorf("create temp model: %w", err)
	}
	defer os.Remove(tmp.Name())

	bundle := modelBundle{Forest: f, Report: report, SeededSynthetic: e.seededSynthetic}
	if err := gob.NewEncoder(tmp).Encode(bundle); err != nil {
		tmp.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp model: %w", err)
	}

	if err := os.Rename(tmp.Name(), e.modelPath); err != nil {
		return fmt.Errorf("replace model: %w", err)
	}
	return nil
}

func (e *Engine) loadModel() error {
	f, err := os.Open(e.modelPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var bundle modelBundle
	if err := gob.NewDecoder(f).Decode(&bundle); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}

	e.forest = bundle.Forest
	e.lastReport = bundle.Report
	e.seededSynthetic = bundle.SeededSynthetic
	return nil
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
