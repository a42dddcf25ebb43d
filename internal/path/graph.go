package path

import (
	"errors"
	"time"

	"github.com/example/lingopath/pkg/models"
)

// Sentinel errors for caller input the graph refuses to apply.
var (
	ErrUnknownSkill   = errors.New("path: unknown skill id")
	ErrInvalidCrowns  = errors.New("path: crowns must be between 0 and 5")
	ErrInvalidMastery = errors.New("path: mastery level must be between 0 and 100")
)

// SkillUpdate carries the optional fields of an updateSkillProgress call.
// Nil fields are left untouched.
type SkillUpdate struct {
	Crowns       *int
	MasteryLevel *int
	Completed    *bool
}

// Graph is the prerequisite DAG over the course content. Content is
// read-only after construction; per-user progress flows through the pure
// update methods as snapshots. Acyclicity of prerequisites is a content
// authoring contract checked at import time, not here.
type Graph struct {
	path   *models.Path
	skills map[string]skillRef
}

type skillRef struct {
	unit   int
	lesson int
	skill  int
}

// NewGraph indexes the content tree for lookups
func NewGraph(p *models.Path) *Graph {
	g := &Graph{
		path:   p,
		skills: make(map[string]skillRef),
	}
	for ui, unit := range p.Units {
		for li, lesson := range unit.Lessons {
			for si, skill := range lesson.Skills {
				g.skills[skill.ID] = skillRef{unit: ui, lesson: li, skill: si}
			}
		}
	}
	return g
}

// Path returns the content tree the graph was built from
func (g *Graph) Path() *models.Path {
	return g.path
}

// Skill returns the content definition for a skill ID
func (g *Graph) Skill(skillID string) (models.Skill, bool) {
	ref, ok := g.skills[skillID]
	if !ok {
		return models.Skill{}, false
	}
	return g.path.Units[ref.unit].Lessons[ref.lesson].Skills[ref.skill], true
}

// InitProgress builds a fresh progression document mirroring the content
// tree. Skills without prerequisites (and whose containers have no level
// gate above userLevel) start unlocked.
func (g *Graph) InitProgress(userID string, userLevel int) models.PathProgress {
	progress := models.PathProgress{
		UserID: userID,
		PathID: g.path.ID,
		Units:  make([]models.UnitProgress, 0, len(g.path.Units)),
	}

	for _, unit := range g.path.Units {
		up := models.UnitProgress{UnitID: unit.ID}
		for _, lesson := range unit.Lessons {
			lp := models.LessonProgress{LessonID: lesson.ID}
			for _, skill := range lesson.Skills {
				lp.Skills = append(lp.Skills, models.SkillProgress{
					SkillID:  skill.ID,
					IsLocked: true,
				})
			}
			up.Lessons = append(up.Lessons, lp)
		}
		progress.Units = append(progress.Units, up)
	}

	return g.RecomputeUnlocks(progress, userLevel)
}

// UpdateSkillProgress applies a partial update to one skill and returns a
// new progression document with completion propagated up the containment
// chain, total crowns recomputed, and unlocks refreshed.
func (g *Graph) UpdateSkillProgress(progress models.PathProgress, skillID string, update SkillUpdate, userLevel int, now time.Time) (models.PathProgress, error) {
	if update.Crowns != nil && (*update.Crowns < 0 || *update.Crowns > 5) {
		return models.PathProgress{}, ErrInvalidCrowns
	}
	if update.MasteryLevel != nil && (*update.MasteryLevel < 0 || *update.MasteryLevel > 100) {
		return models.PathProgress{}, ErrInvalidMastery
	}

	next := cloneProgress(progress)
	sp := findSkillProgress(&next, skillID)
	if sp == nil {
		return models.PathProgress{}, ErrUnknownSkill
	}

	if update.Crowns != nil {
		sp.Crowns = *update.Crowns
	}
	if update.MasteryLevel != nil {
		sp.MasteryLevel = *update.MasteryLevel
	}
	if update.Completed != nil {
		sp.Completed = *update.Completed
		sp.LastPracticedAt = now
	}

	g.propagateCompletion(&next, now)
	next.TotalCrowns = totalCrowns(&next)

	return g.RecomputeUnlocks(next, userLevel), nil
}

// RecomputeUnlocks re-derives every skill's lock flag from the completed
// set and the user's level. A skill unlocks when all of its prerequisites
// are completed and its lesson and unit level gates are met. Completed
// skills are never re-locked.
func (g *Graph) RecomputeUnlocks(progress models.PathProgress, userLevel int) models.PathProgress {
	next := cloneProgress(progress)

	completed := make(map[string]bool)
	for _, up := range next.Units {
		for _, lp := range up.Lessons {
			for _, sp := range lp.Skills {
				if sp.Completed {
					completed[sp.SkillID] = true
				}
			}
		}
	}

	for ui := range next.Units {
		unit := g.path.Units[ui]
		for li := range next.Units[ui].Lessons {
			lesson := unit.Lessons[li]
			for si := range next.Units[ui].Lessons[li].Skills {
				sp := &next.Units[ui].Lessons[li].Skills[si]
				if sp.Completed {
					sp.IsLocked = false
					continue
				}
				sp.IsLocked = !g.unlockable(lesson.Skills[si], unit, lesson, completed, userLevel)
			}
		}
	}

	return next
}

func (g *Graph) unlockable(skill models.Skill, unit models.Unit, lesson models.Lesson, completed map[string]bool, userLevel int) bool {
	if userLevel < unit.UnlockLevel || userLevel < lesson.UnlockLevel {
		return false
	}
	for _, prereq := range skill.Prerequisites {
		if !completed[prereq] {
			return false
		}
	}
	return true
}

// IsSkillUnlocked reads the current lock flag. Unlocking is driven by the
// explicit recompute pass, not re-derived here.
func (g *Graph) IsSkillUnlocked(progress models.PathProgress, skillID string) bool {
	for _, up := range progress.Units {
		for _, lp := range up.Lessons {
			for _, sp := range lp.Skills {
				if sp.SkillID == skillID {
					return !sp.IsLocked
				}
			}
		}
	}
	return false
}

// SkillProgress returns a copy of the progress entry for one skill
func (g *Graph) SkillProgress(progress models.PathProgress, skillID string) (models.SkillProgress, bool) {
	for _, up := range progress.Units {
		for _, lp := range up.Lessons {
			for _, sp := range lp.Skills {
				if sp.SkillID == skillID {
					return sp, true
				}
			}
		}
	}
	return models.SkillProgress{}, false
}

// NextUnlockedSkill scans units, lessons and skills in declaration order
// and returns the first skill that is unlocked but not yet completed.
func (g *Graph) NextUnlockedSkill(progress models.PathProgress) (models.Skill, bool) {
	for ui, unit := range g.path.Units {
		if ui >= len(progress.Units) {
			break
		}
		for li, lesson := range unit.Lessons {
			if li >= len(progress.Units[ui].Lessons) {
				break
			}
			for si := range lesson.Skills {
				if si >= len(progress.Units[ui].Lessons[li].Skills) {
					break
				}
				sp := progress.Units[ui].Lessons[li].Skills[si]
				if !sp.IsLocked && !sp.Completed {
					return lesson.Skills[si], true
				}
			}
		}
	}
	return models.Skill{}, false
}

// propagateCompletion re-derives lesson and unit completion as the AND of
// their children. CompletedAt is stamped only when a container flips to
// completed and cleared if it regresses.
func (g *Graph) propagateCompletion(progress *models.PathProgress, now time.Time) {
	for ui := range progress.Units {
		unitDone := true
		for li := range progress.Units[ui].Lessons {
			lp := &progress.Units[ui].Lessons[li]
			lessonDone := true
			for _, sp := range lp.Skills {
				if !sp.Completed {
					lessonDone = false
					break
				}
			}
			if lessonDone && !lp.Completed {
				stamp := now
				lp.CompletedAt = &stamp
			}
			if !lessonDone {
				lp.CompletedAt = nil
			}
			lp.Completed = lessonDone
			if !lessonDone {
				unitDone = false
			}
		}
		up := &progress.Units[ui]
		if unitDone && !up.Completed {
			stamp := now
			up.CompletedAt = &stamp
		}
		if !unitDone {
			up.CompletedAt = nil
		}
		up.Completed = unitDone
	}
}

// totalCrowns sums crowns across every skill. Recomputed in full on every
// update so it can never drift from the tree.
func totalCrowns(progress *models.PathProgress) int {
	sum := 0
	for _, up := range progress.Units {
		for _, lp := range up.Lessons {
			for _, sp := range lp.Skills {
				sum += sp.Crowns
			}
		}
	}
	return sum
}

func findSkillProgress(progress *models.PathProgress, skillID string) *models.SkillProgress {
	for ui := range progress.Units {
		for li := range progress.Units[ui].Lessons {
			for si := range progress.Units[ui].Lessons[li].Skills {
				sp := &progress.Units[ui].Lessons[li].Skills[si]
				if sp.SkillID == skillID {
					return sp
				}
			}
		}
	}
	return nil
}

// cloneProgress deep-copies a progression document. Pointer timestamps are
// copied by value.
func cloneProgress(progress models.PathProgress) models.PathProgress {
	out := progress
	out.Units = make([]models.UnitProgress, len(progress.Units))
	for ui, up := range progress.Units {
		cu := up
		if up.CompletedAt != nil {
			v := *up.CompletedAt
			cu.CompletedAt = &v
		}
		cu.Lessons = make([]models.LessonProgress, len(up.Lessons))
		for li, lp := range up.Lessons {
			cl := lp
			if lp.CompletedAt != nil {
				v := *lp.CompletedAt
				cl.CompletedAt = &v
			}
			cl.Skills = make([]models.SkillProgress, len(lp.Skills))
			copy(cl.Skills, lp.Skills)
			cu.Lessons[li] = cl
		}
		out.Units[ui] = cu
	}
	return out
}
