package models

import "time"

// Skill is a unit of learnable content inside a lesson
type Skill struct {
	ID            string   `json:"id" db:"id"`
	Name          string   `json:"name" db:"name"`
	Description   string   `json:"description" db:"description"`
	LessonID      string   `json:"lesson_id" db:"lesson_id"`
	UnitID        string   `json:"unit_id" db:"unit_id"`
	Difficulty    int      `json:"difficulty" db:"difficulty"` // 1-5 scale
	XPReward      int      `json:"xp_reward" db:"xp_reward"`
	Order         int      `json:"order" db:"ord"`
	Prerequisites []string `json:"prerequisites"` // Skill IDs that must be completed first
}

// Lesson groups skills inside a unit
type Lesson struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	UnitID      string  `json:"unit_id" db:"unit_id"`
	Order       int     `json:"order" db:"ord"`
	UnlockLevel int     `json:"unlock_level,omitempty" db:"unlock_level"` // Minimum user level, 0 = none
	Skills      []Skill `json:"skills"`
}

// Unit is the top-level container of the learning path
type Unit struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	Order       int      `json:"order" db:"ord"`
	UnlockLevel int      `json:"unlock_level,omitempty" db:"unlock_level"`
	Lessons     []Lesson `json:"lessons"`
}

// Path is the full course content tree in declaration order
type Path struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       []Unit `json:"units"`
	TotalXP     int    `json:"total_xp"`
}

// SkillProgress is a user's state for one skill
type SkillProgress struct {
	SkillID         string    `json:"skill_id"`
	Crowns          int       `json:"crowns"`        // 0-5
	MasteryLevel    int       `json:"mastery_level"` // 0-100
	Completed       bool      `json:"completed"`
	IsLocked        bool      `json:"is_locked"`
	LastPracticedAt time.Time `json:"last_practiced_at"`
}

// LessonProgress is completed iff all of its skills are completed
type LessonProgress struct {
	LessonID    string          `json:"lesson_id"`
	Skills      []SkillProgress `json:"skills_progress"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// UnitProgress is completed iff all of its lessons are completed
type UnitProgress struct {
	UnitID      string           `json:"unit_id"`
	Lessons     []LessonProgress `json:"lessons_progress"`
	Completed   bool             `json:"completed"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// PathProgress is a user's full progression document over the path
type PathProgress struct {
	UserID      string         `json:"user_id"`
	PathID      string         `json:"path_id"`
	Units       []UnitProgress `json:"units_progress"`
	TotalCrowns int            `json:"total_crowns"`
	Version     int            `json:"-"`
}
