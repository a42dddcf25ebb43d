package adaptive

import (
	"errors"
	"math"
	"time"

	"github.com/example/lingopath/pkg/models"
)

// ErrInvalidDifficulty is returned when a base difficulty is outside 1-5.
var ErrInvalidDifficulty = errors.New("adaptive: base difficulty must be between 1 and 5")

// DifficultyAdjustment is the estimator's recommendation for the next exercise
type DifficultyAdjustment struct {
	Recommended float64 `json:"recommended_difficulty"` // 1-5, in 0.5 steps
	Confidence  float64 `json:"confidence"`             // 0-1, grows with attempts
	ShouldSkip  bool    `json:"should_skip"`            // Content already mastered
}

// Config holds the accuracy and timing thresholds for the estimator
type Config struct {
	MinAttempts        int     // Attempts required before performance is trusted
	MasteredAttempts   int     // Attempts required before ShouldSkip can fire
	ConfidenceAttempts int     // Attempts at which confidence reaches 1.0
	HighAccuracy       float64 // At or above: raise difficulty
	GoodAccuracy       float64 // At or above: raise by half a step
	MediumAccuracy     float64 // At or above: keep difficulty
	WeakAccuracy       float64 // Below: item needs extra practice
	FastAnswerSeconds  float64 // Average time under this counts as fast
	SpeedupSeconds     float64 // Average time under this marks a fast learner
	SlowdownSeconds    float64 // Average time over this marks a slow learner
}

// DefaultConfig returns the standard estimator thresholds
func DefaultConfig() *Config {
	return &Config{
		MinAttempts:        3,
		MasteredAttempts:   5,
		ConfidenceAttempts: 10,
		HighAccuracy:       0.85,
		GoodAccuracy:       0.75,
		MediumAccuracy:     0.5,
		WeakAccuracy:       0.6,
		FastAnswerSeconds:  10,
		SpeedupSeconds:     8,
		SlowdownSeconds:    20,
	}
}

// Estimator recommends exercise difficulty from accumulated performance.
// All methods are pure over the performance snapshot.
type Estimator struct {
	config *Config
}

// NewEstimator creates an estimator; a nil config uses the defaults
func NewEstimator(config *Config) *Estimator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Estimator{config: config}
}

// ApplyAttempt folds one exercise outcome into the performance record and
// returns the updated copy. The average time is a running mean weighted by
// the prior attempt count.
func (e *Estimator) ApplyAttempt(record models.PerformanceRecord, correct bool, timeSpentSeconds float64, now time.Time) models.PerformanceRecord {
	next := record

	oldTotal := record.TotalAttempts
	next.TotalAttempts = oldTotal + 1
	if correct {
		next.CorrectAttempts = record.CorrectAttempts + 1
	}
	next.AverageTime = (record.AverageTime*float64(oldTotal) + timeSpentSeconds) / float64(oldTotal+1)
	next.UpdatedAt = now

	return next
}

// CalculateDifficulty recommends a difficulty for the next exercise given
// the base difficulty of the content. With fewer than MinAttempts recorded
// the base is returned with low confidence.
func (e *Estimator) CalculateDifficulty(performance *models.PerformanceRecord, baseDifficulty int) (DifficultyAdjustment, error) {
	if baseDifficulty < 1 || baseDifficulty > 5 {
		return DifficultyAdjustment{}, ErrInvalidDifficulty
	}

	if performance == nil || performance.TotalAttempts < e.config.MinAttempts {
		return DifficultyAdjustment{
			Recommended: float64(baseDifficulty),
			Confidence:  0.3,
			ShouldSkip:  false,
		}, nil
	}

	accuracy := performance.Accuracy()
	avgTime := performance.AverageTime
	base := float64(baseDifficulty)

	var recommended float64
	shouldSkip := false

	switch {
	case accuracy >= e.config.HighAccuracy && avgTime < e.config.FastAnswerSeconds:
		recommended = math.Min(5, base+1)
		shouldSkip = performance.TotalAttempts >= e.config.MasteredAttempts
	case accuracy >= e.config.GoodAccuracy:
		recommended = math.Min(5, base+0.5)
	case accuracy >= e.config.MediumAccuracy:
		recommended = base
	default:
		recommended = math.Max(1, base-1)
	}

	return DifficultyAdjustment{
		Recommended: math.Round(recommended*2) / 2,
		Confidence:  math.Min(1, float64(performance.TotalAttempts)/float64(e.config.ConfidenceAttempts)),
		ShouldSkip:  shouldSkip,
	}, nil
}

// WeakAreas returns the item IDs whose per-item accuracy is low enough to
// need extra practice. Skill-level records (empty item ID) are ignored.
func (e *Estimator) WeakAreas(records []models.PerformanceRecord) []string {
	weak := make([]string, 0)
	for _, r := range records {
		if r.ItemID == "" {
			continue
		}
		if r.TotalAttempts >= e.config.MinAttempts && r.Accuracy() < e.config.WeakAccuracy {
			weak = append(weak, r.ItemID)
		}
	}
	return weak
}

// ShouldReviewSkill reports whether a skill is due for a refresher. High
// performers can wait a week, medium performers three days, everyone else
// reviews daily.
func (e *Estimator) ShouldReviewSkill(performance *models.PerformanceRecord, daysSinceLastReview int) bool {
	if performance == nil || performance.TotalAttempts == 0 {
		return false
	}

	accuracy := performance.Accuracy()
	switch {
	case accuracy >= 0.8:
		return daysSinceLastReview >= 7
	case accuracy >= e.config.WeakAccuracy:
		return daysSinceLastReview >= 3
	default:
		return daysSinceLastReview >= 1
	}
}

// LearningSpeed returns a pacing multiplier for progression: fast accurate
// learners move 50% faster, struggling learners 30% slower.
func (e *Estimator) LearningSpeed(performance *models.PerformanceRecord) float64 {
	if performance == nil || performance.TotalAttempts < e.config.MasteredAttempts {
		return 1.0
	}

	accuracy := performance.Accuracy()
	avgTime := performance.AverageTime

	if accuracy >= e.config.HighAccuracy && avgTime < e.config.SpeedupSeconds {
		return 1.5
	}
	if accuracy < e.config.WeakAccuracy || avgTime > e.config.SlowdownSeconds {
		return 0.7
	}
	return 1.0
}
