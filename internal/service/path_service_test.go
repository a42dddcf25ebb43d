package service

import (
	"context"
	"errors"
	"testing"

	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/event"
	"github.com/example/lingopath/internal/path"
	"github.com/example/lingopath/pkg/models"
)

func courseContent() *models.Path {
	return &models.Path{
		ID: "main-path",
		Units: []models.Unit{
			{
				ID: "unit-1",
				Lessons: []models.Lesson{
					{
						ID:     "lesson-1",
						UnitID: "unit-1",
						Skills: []models.Skill{
							{ID: "s1", LessonID: "lesson-1", UnitID: "unit-1"},
							{ID: "s2", LessonID: "lesson-1", UnitID: "unit-1", Prerequisites: []string{"s1"}},
						},
					},
				},
			},
		},
	}
}

func newPathServiceForTest(progress *fakeProgressStore, econ *fakeEconomyStore, events *fakeEvents) *PathService {
	s := NewPathService(path.NewGraph(courseContent()), progress, econ, events)
	s.now = fixedNow
	return s
}

func completed(v bool) *path.SkillUpdate {
	return &path.SkillUpdate{Completed: &v}
}

func TestGetProgressLazyInit(t *testing.T) {
	store := newFakeProgressStore()
	s := newPathServiceForTest(store, newFakeEconomyStore(), &fakeEvents{})

	progress, err := s.GetProgress(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.PathID != "main-path" {
		t.Errorf("unexpected document: %+v", progress)
	}

	unlocked, err := s.IsSkillUnlocked(context.Background(), "user-1", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !unlocked {
		t.Error("expected the prerequisite-free skill to start unlocked")
	}

	if _, err := store.Get(context.Background(), "user-1"); err != nil {
		t.Errorf("document was not persisted: %v", err)
	}
}

func TestUpdateSkillProgressPublishesEvents(t *testing.T) {
	store := newFakeProgressStore()
	events := &fakeEvents{}
	s := newPathServiceForTest(store, newFakeEconomyStore(), events)

	if _, err := s.UpdateSkillProgress(context.Background(), "user-1", "s1", *completed(true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events.count(event.SkillCompleted) != 1 {
		t.Errorf("expected one SkillCompleted event, got %d", events.count(event.SkillCompleted))
	}
	if events.count(event.UnitCompleted) != 0 {
		t.Error("unit must not complete with one of two skills done")
	}

	progress, err := s.UpdateSkillProgress(context.Background(), "user-1", "s2", *completed(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !progress.Units[0].Completed {
		t.Error("expected the unit completed")
	}
	if events.count(event.UnitCompleted) != 1 {
		t.Errorf("expected one UnitCompleted event, got %d", events.count(event.UnitCompleted))
	}

	// Re-completing an already completed skill publishes nothing new
	if _, err := s.UpdateSkillProgress(context.Background(), "user-1", "s2", *completed(true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events.count(event.SkillCompleted) != 2 {
		t.Errorf("expected two SkillCompleted events total, got %d", events.count(event.SkillCompleted))
	}
	if events.count(event.UnitCompleted) != 1 {
		t.Errorf("expected no duplicate UnitCompleted event, got %d", events.count(event.UnitCompleted))
	}
}

func TestUpdateSkillProgressUnknownSkill(t *testing.T) {
	s := newPathServiceForTest(newFakeProgressStore(), newFakeEconomyStore(), &fakeEvents{})

	if _, err := s.UpdateSkillProgress(context.Background(), "user-1", "ghost", *completed(true)); !errors.Is(err, path.ErrUnknownSkill) {
		t.Errorf("expected ErrUnknownSkill, got %v", err)
	}
}

func TestUpdateSkillProgressRetriesOnConflict(t *testing.T) {
	store := newFakeProgressStore()
	s := newPathServiceForTest(store, newFakeEconomyStore(), &fakeEvents{})

	if _, err := s.GetProgress(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.failUpdates = 1
	progress, err := s.UpdateSkillProgress(context.Background(), "user-1", "s1", *completed(true))
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	sp, _ := path.NewGraph(courseContent()).SkillProgress(*progress, "s1")
	if !sp.Completed {
		t.Error("expected s1 completed after retry")
	}
}

func TestNextUnlockedSkill(t *testing.T) {
	s := newPathServiceForTest(newFakeProgressStore(), newFakeEconomyStore(), &fakeEvents{})

	skill, err := s.NextUnlockedSkill(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skill.ID != "s1" {
		t.Errorf("expected s1 first, got %s", skill.ID)
	}

	if _, err := s.UpdateSkillProgress(context.Background(), "user-1", "s1", *completed(true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.UpdateSkillProgress(context.Background(), "user-1", "s2", *completed(true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.NextUnlockedSkill(context.Background(), "user-1"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound once the path is exhausted, got %v", err)
	}
}
