package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/path"
	"github.com/example/lingopath/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the content import configuration
type ImportConfig struct {
	FilePath     string // Path to the Excel or CSV file
	UnitsSheet   string // Sheet with unit rows
	LessonsSheet string // Sheet with lesson rows
	SkillsSheet  string // Sheet with skill rows
	StartRow     int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		UnitsSheet:   "Units",
		LessonsSheet: "Lessons",
		SkillsSheet:  "Skills",
		StartRow:     2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Units          int
	Lessons        int
	Skills         int
	Errors         []string
}

// ImportContent loads the unit/lesson/skill tree from an Excel or CSV
// file, validates the prerequisite graph and upserts the content tables.
// Nothing is written when validation fails.
func ImportContent(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var units []models.Unit
	var lessons []models.Lesson
	var skills []models.Skill
	result := &ImportResult{
		Errors: make([]string, 0),
	}

	var err error
	if ext == ".csv" {
		units, lessons, skills, err = readCSV(config, result)
	} else {
		units, lessons, skills, err = readExcel(config, result)
	}
	if err != nil {
		return nil, err
	}

	if err := validateTree(units, lessons, skills); err != nil {
		return nil, err
	}

	repo := database.NewContentRepository()
	for i := range units {
		if err := repo.UpsertUnit(ctx, &units[i]); err != nil {
			return nil, err
		}
		result.Units++
	}
	for i := range lessons {
		if err := repo.UpsertLesson(ctx, &lessons[i]); err != nil {
			return nil, err
		}
		result.Lessons++
	}
	for i := range skills {
		if err := repo.UpsertSkill(ctx, &skills[i]); err != nil {
			return nil, err
		}
		result.Skills++
	}

	return result, nil
}

// readExcel reads unit, lesson and skill rows from their sheets
func readExcel(config ImportConfig, result *ImportResult) ([]models.Unit, []models.Lesson, []models.Skill, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	var units []models.Unit
	var lessons []models.Lesson
	var skills []models.Skill

	unitRows, err := f.GetRows(config.UnitsSheet)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get unit rows: %v", err)
	}
	for i, row := range unitRows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		unit, err := parseUnitRow(row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: %v", config.UnitsSheet, i+1, err))
			continue
		}
		units = append(units, unit)
	}

	lessonRows, err := f.GetRows(config.LessonsSheet)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get lesson rows: %v", err)
	}
	for i, row := range lessonRows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		lesson, err := parseLessonRow(row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: %v", config.LessonsSheet, i+1, err))
			continue
		}
		lessons = append(lessons, lesson)
	}

	skillRows, err := f.GetRows(config.SkillsSheet)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get skill rows: %v", err)
	}
	for i, row := range skillRows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		skill, err := parseSkillRow(row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: %v", config.SkillsSheet, i+1, err))
			continue
		}
		skills = append(skills, skill)
	}

	return units, lessons, skills, nil
}

// readCSV reads a single flat file where the first column carries the row
// kind: "unit", "lesson" or "skill", followed by the same fields as the
// Excel sheets
func readCSV(config ImportConfig, result *ImportResult) ([]models.Unit, []models.Lesson, []models.Skill, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var units []models.Unit
	var lessons []models.Lesson
	var skills []models.Skill

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		result.TotalProcessed++

		kind := strings.ToLower(strings.TrimSpace(row[0]))
		fields := row[1:]

		switch kind {
		case "unit":
			unit, err := parseUnitRow(fields)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
			units = append(units, unit)
		case "lesson":
			lesson, err := parseLessonRow(fields)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
			lessons = append(lessons, lesson)
		case "skill":
			skill, err := parseSkillRow(fields)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
			skills = append(skills, skill)
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: unknown row kind %q", rowNum, kind))
		}
	}

	return units, lessons, skills, nil
}

// parseUnitRow parses: id, name, description, order, unlock_level
func parseUnitRow(row []string) (models.Unit, error) {
	if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
		return models.Unit{}, fmt.Errorf("unit id and name are required")
	}
	return models.Unit{
		ID:          strings.TrimSpace(row[0]),
		Name:        strings.TrimSpace(row[1]),
		Description: cell(row, 2),
		Order:       parseIntOrDefault(cell(row, 3), 0, 10000, 0),
		UnlockLevel: parseIntOrDefault(cell(row, 4), 0, 100, 0),
	}, nil
}

// parseLessonRow parses: id, unit_id, name, description, order, unlock_level
func parseLessonRow(row []string) (models.Lesson, error) {
	if len(row) < 3 || strings.TrimSpace(row[0]) == "" || strings.TrimSpace(row[1]) == "" {
		return models.Lesson{}, fmt.Errorf("lesson id, unit id and name are required")
	}
	return models.Lesson{
		ID:          strings.TrimSpace(row[0]),
		UnitID:      strings.TrimSpace(row[1]),
		Name:        strings.TrimSpace(row[2]),
		Description: cell(row, 3),
		Order:       parseIntOrDefault(cell(row, 4), 0, 10000, 0),
		UnlockLevel: parseIntOrDefault(cell(row, 5), 0, 100, 0),
	}, nil
}

// parseSkillRow parses: id, lesson_id, name, description, difficulty,
// xp_reward, order, prerequisites (semicolon separated skill IDs)
func parseSkillRow(row []string) (models.Skill, error) {
	if len(row) < 3 || strings.TrimSpace(row[0]) == "" || strings.TrimSpace(row[1]) == "" {
		return models.Skill{}, fmt.Errorf("skill id, lesson id and name are required")
	}

	var prereqs []string
	for _, p := range strings.Split(cell(row, 7), ";") {
		if p = strings.TrimSpace(p); p != "" {
			prereqs = append(prereqs, p)
		}
	}

	return models.Skill{
		ID:            strings.TrimSpace(row[0]),
		LessonID:      strings.TrimSpace(row[1]),
		Name:          strings.TrimSpace(row[2]),
		Description:   cell(row, 3),
		Difficulty:    parseIntOrDefault(cell(row, 4), 1, 5, 3),
		XPReward:      parseIntOrDefault(cell(row, 5), 0, 10000, 10),
		Order:         parseIntOrDefault(cell(row, 6), 0, 10000, 0),
		Prerequisites: prereqs,
	}, nil
}

// validateTree assembles the parsed rows into a path and runs the content
// checks: every lesson must reference a known unit, every skill a known
// lesson, and the prerequisite graph must be valid
func validateTree(units []models.Unit, lessons []models.Lesson, skills []models.Skill) error {
	unitIDs := make(map[string]bool, len(units))
	for _, u := range units {
		if unitIDs[u.ID] {
			return fmt.Errorf("duplicate unit %q", u.ID)
		}
		unitIDs[u.ID] = true
	}

	lessonUnit := make(map[string]string, len(lessons))
	for _, l := range lessons {
		if _, ok := lessonUnit[l.ID]; ok {
			return fmt.Errorf("duplicate lesson %q", l.ID)
		}
		if !unitIDs[l.UnitID] {
			return fmt.Errorf("lesson %q references unknown unit %q", l.ID, l.UnitID)
		}
		lessonUnit[l.ID] = l.UnitID
	}

	skillsByLesson := make(map[string][]models.Skill)
	seenSkills := make(map[string]bool, len(skills))
	for _, s := range skills {
		if seenSkills[s.ID] {
			return fmt.Errorf("duplicate skill %q", s.ID)
		}
		seenSkills[s.ID] = true
		if _, ok := lessonUnit[s.LessonID]; !ok {
			return fmt.Errorf("skill %q references unknown lesson %q", s.ID, s.LessonID)
		}
		skillsByLesson[s.LessonID] = append(skillsByLesson[s.LessonID], s)
	}

	tree := &models.Path{ID: database.PathID}
	lessonsByUnit := make(map[string][]models.Lesson)
	for _, l := range lessons {
		l.Skills = skillsByLesson[l.ID]
		lessonsByUnit[l.UnitID] = append(lessonsByUnit[l.UnitID], l)
	}
	for _, u := range units {
		u.Lessons = lessonsByUnit[u.ID]
		tree.Units = append(tree.Units, u)
	}

	return path.ValidateContent(tree)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// Helper function to parse integer within a range
func parseIntInRange(s string, min, max int) (int, error) {
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return min, err
	}
	if val < min {
		return min, nil
	}
	if val > max {
		return max, nil
	}
	return val, nil
}

// Helper function to parse integer with default value
func parseIntOrDefault(s string, min, max, defaultVal int) int {
	if val, err := parseIntInRange(s, min, max); err == nil {
		return val
	}
	return defaultVal
}
