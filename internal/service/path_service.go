package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/event"
	"github.com/example/lingopath/internal/path"
	"github.com/example/lingopath/pkg/models"
)

// PathService owns per-user progression over the course content. Every
// mutation loads the user's progression document, applies the pure graph
// update and swaps the new document in with a compare-and-swap, so the
// skill -> lesson -> unit propagation is never applied to a stale snapshot.
type PathService struct {
	graph    *path.Graph
	progress ProgressStore
	economy  EconomyStore
	events   Events
	now      func() time.Time
}

// NewPathService creates the service
func NewPathService(graph *path.Graph, progress ProgressStore, economy EconomyStore, events Events) *PathService {
	return &PathService{
		graph:    graph,
		progress: progress,
		economy:  economy,
		events:   events,
		now:      time.Now,
	}
}

// GetPath returns the course content tree
func (s *PathService) GetPath() *models.Path {
	return s.graph.Path()
}

// GetProgress returns the user's progression document, creating it on
// first contact with prerequisite-free skills unlocked
func (s *PathService) GetProgress(ctx context.Context, userID string) (*models.PathProgress, error) {
	progress, err := s.progress.Get(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	level, err := s.userLevel(ctx, userID)
	if err != nil {
		return nil, err
	}

	fresh := s.graph.InitProgress(userID, level)
	if err := s.progress.Create(ctx, &fresh); err != nil {
		// Another request may have initialized it concurrently
		if existing, getErr := s.progress.Get(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return &fresh, nil
}

// UpdateSkillProgress applies a partial skill update with upward
// propagation and returns the new document. Skill and unit completion
// transitions are published as events.
func (s *PathService) UpdateSkillProgress(ctx context.Context, userID, skillID string, update path.SkillUpdate) (*models.PathProgress, error) {
	if _, ok := s.graph.Skill(skillID); !ok {
		return nil, path.ErrUnknownSkill
	}

	now := s.now()

	for attempt := 0; attempt < maxRetries; attempt++ {
		progress, err := s.GetProgress(ctx, userID)
		if err != nil {
			return nil, err
		}

		level, err := s.userLevel(ctx, userID)
		if err != nil {
			return nil, err
		}

		before, _ := s.graph.SkillProgress(*progress, skillID)
		unitsBefore := completedUnits(progress)

		next, err := s.graph.UpdateSkillProgress(*progress, skillID, update, level, now)
		if err != nil {
			return nil, err
		}
		next.Version = progress.Version

		err = s.progress.Update(ctx, &next)
		if errors.Is(err, database.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		after, _ := s.graph.SkillProgress(next, skillID)
		if after.Completed && !before.Completed {
			s.events.Publish(event.SkillCompleted, map[string]interface{}{
				"user_id":  userID,
				"skill_id": skillID,
			})
		}
		for _, up := range next.Units {
			if up.Completed && !unitsBefore[up.UnitID] {
				s.events.Publish(event.UnitCompleted, map[string]interface{}{
					"user_id": userID,
					"unit_id": up.UnitID,
				})
			}
		}
		return &next, nil
	}

	return nil, fmt.Errorf("update skill progress for user %s skill %s: %w", userID, skillID, database.ErrConflict)
}

// RecomputeUnlocks refreshes lock flags from the completed set and the
// user's current level. Called after level-ups to open level-gated
// content.
func (s *PathService) RecomputeUnlocks(ctx context.Context, userID string) (*models.PathProgress, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		progress, err := s.GetProgress(ctx, userID)
		if err != nil {
			return nil, err
		}

		level, err := s.userLevel(ctx, userID)
		if err != nil {
			return nil, err
		}

		next := s.graph.RecomputeUnlocks(*progress, level)
		next.Version = progress.Version

		err = s.progress.Update(ctx, &next)
		if errors.Is(err, database.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &next, nil
	}

	return nil, fmt.Errorf("recompute unlocks for user %s: %w", userID, database.ErrConflict)
}

// IsSkillUnlocked reads the current lock flag for a skill
func (s *PathService) IsSkillUnlocked(ctx context.Context, userID, skillID string) (bool, error) {
	if _, ok := s.graph.Skill(skillID); !ok {
		return false, path.ErrUnknownSkill
	}
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.graph.IsSkillUnlocked(*progress, skillID), nil
}

// NextUnlockedSkill returns the first unlocked, uncompleted skill in
// declaration order, or ErrNotFound when the path is exhausted
func (s *PathService) NextUnlockedSkill(ctx context.Context, userID string) (*models.Skill, error) {
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	skill, ok := s.graph.NextUnlockedSkill(*progress)
	if !ok {
		return nil, database.ErrNotFound
	}
	return &skill, nil
}

func (s *PathService) userLevel(ctx context.Context, userID string) (int, error) {
	state, err := s.economy.Get(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return state.Level, nil
}

func completedUnits(progress *models.PathProgress) map[string]bool {
	done := make(map[string]bool, len(progress.Units))
	for _, up := range progress.Units {
		if up.Completed {
			done[up.UnitID] = true
		}
	}
	return done
}
