package database

import (
	"context"
	"fmt"

	"github.com/example/lingopath/pkg/models"
)

// PathID identifies the single course path this deployment serves
const PathID = "main-path"

// ContentRepository handles database operations for the course content tree
type ContentRepository struct{}

// NewContentRepository creates a new repository instance
func NewContentRepository() *ContentRepository {
	return &ContentRepository{}
}

type prerequisiteRow struct {
	SkillID        string `db:"skill_id"`
	PrerequisiteID string `db:"prerequisite_id"`
}

// GetPath loads the full unit -> lesson -> skill tree in declaration order
func (r *ContentRepository) GetPath(ctx context.Context) (*models.Path, error) {
	var units []models.Unit
	err := DB.SelectContext(ctx, &units,
		`SELECT id, name, description, ord, unlock_level FROM units ORDER BY ord ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get units: %v", err)
	}

	var lessons []models.Lesson
	err = DB.SelectContext(ctx, &lessons,
		`SELECT id, unit_id, name, description, ord, unlock_level FROM lessons ORDER BY ord ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %v", err)
	}

	var skills []models.Skill
	err = DB.SelectContext(ctx, &skills,
		`SELECT s.id, s.lesson_id, l.unit_id, s.name, s.description, s.difficulty, s.xp_reward, s.ord
		 FROM skills s JOIN lessons l ON s.lesson_id = l.id
		 ORDER BY s.ord ASC, s.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get skills: %v", err)
	}

	var prereqs []prerequisiteRow
	err = DB.SelectContext(ctx, &prereqs,
		`SELECT skill_id, prerequisite_id FROM skill_prerequisites ORDER BY skill_id ASC, prerequisite_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill prerequisites: %v", err)
	}

	prereqsBySkill := make(map[string][]string)
	for _, p := range prereqs {
		prereqsBySkill[p.SkillID] = append(prereqsBySkill[p.SkillID], p.PrerequisiteID)
	}

	skillsByLesson := make(map[string][]models.Skill)
	totalXP := 0
	for _, s := range skills {
		s.Prerequisites = prereqsBySkill[s.ID]
		skillsByLesson[s.LessonID] = append(skillsByLesson[s.LessonID], s)
		totalXP += s.XPReward
	}

	lessonsByUnit := make(map[string][]models.Lesson)
	for _, l := range lessons {
		l.Skills = skillsByLesson[l.ID]
		lessonsByUnit[l.UnitID] = append(lessonsByUnit[l.UnitID], l)
	}

	path := &models.Path{
		ID:      PathID,
		Name:    "Main Learning Path",
		TotalXP: totalXP,
	}
	for _, u := range units {
		u.Lessons = lessonsByUnit[u.ID]
		path.Units = append(path.Units, u)
	}

	return path, nil
}

// UpsertUnit inserts or refreshes a unit definition
func (r *ContentRepository) UpsertUnit(ctx context.Context, unit *models.Unit) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO units (id, name, description, ord, unlock_level)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			ord = EXCLUDED.ord,
			unlock_level = EXCLUDED.unlock_level`,
		unit.ID, unit.Name, unit.Description, unit.Order, unit.UnlockLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert unit: %v", err)
	}
	return nil
}

// UpsertLesson inserts or refreshes a lesson definition
func (r *ContentRepository) UpsertLesson(ctx context.Context, lesson *models.Lesson) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO lessons (id, unit_id, name, description, ord, unlock_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			unit_id = EXCLUDED.unit_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			ord = EXCLUDED.ord,
			unlock_level = EXCLUDED.unlock_level`,
		lesson.ID, lesson.UnitID, lesson.Name, lesson.Description, lesson.Order, lesson.UnlockLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lesson: %v", err)
	}
	return nil
}

// UpsertSkill inserts or refreshes a skill definition and replaces its
// prerequisite edges
func (r *ContentRepository) UpsertSkill(ctx context.Context, skill *models.Skill) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO skills (id, lesson_id, name, description, difficulty, xp_reward, ord)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			lesson_id = EXCLUDED.lesson_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			difficulty = EXCLUDED.difficulty,
			xp_reward = EXCLUDED.xp_reward,
			ord = EXCLUDED.ord`,
		skill.ID, skill.LessonID, skill.Name, skill.Description,
		skill.Difficulty, skill.XPReward, skill.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert skill: %v", err)
	}

	if _, err := DB.ExecContext(ctx,
		`DELETE FROM skill_prerequisites WHERE skill_id = $1`, skill.ID); err != nil {
		return fmt.Errorf("failed to clear skill prerequisites: %v", err)
	}
	for _, prereq := range skill.Prerequisites {
		if _, err := DB.ExecContext(ctx,
			`INSERT INTO skill_prerequisites (skill_id, prerequisite_id) VALUES ($1, $2)`,
			skill.ID, prereq); err != nil {
			return fmt.Errorf("failed to insert skill prerequisite: %v", err)
		}
	}
	return nil
}
