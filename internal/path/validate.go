package path

import (
	"fmt"

	"github.com/example/lingopath/pkg/models"
)

// ValidateContent checks the authored content tree before it is served:
// every prerequisite must name a known skill, and the prerequisite graph
// must be acyclic. Run at import time; the runtime graph assumes both.
func ValidateContent(p *models.Path) error {
	skills := make(map[string][]string)
	for _, unit := range p.Units {
		for _, lesson := range unit.Lessons {
			for _, skill := range lesson.Skills {
				skills[skill.ID] = skill.Prerequisites
			}
		}
	}

	for id, prereqs := range skills {
		for _, prereq := range prereqs {
			if _, ok := skills[prereq]; !ok {
				return fmt.Errorf("path: skill %q requires unknown skill %q", id, prereq)
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(skills))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("path: prerequisite cycle involving skill %q", id)
		case done:
			return nil
		}
		state[id] = visiting
		for _, prereq := range skills[id] {
			if err := visit(prereq); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for id := range skills {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
