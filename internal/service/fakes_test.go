package service

import (
	"context"
	"time"

	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/pkg/models"
)

// In-memory fakes mirroring the optimistic-concurrency behavior of the
// real repositories: Update checks the version and increments it, and
// failUpdates forces ErrConflict for the first N update calls.

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type fakeEvents struct {
	published []string
}

func (f *fakeEvents) Publish(eventType string, payload interface{}) {
	f.published = append(f.published, eventType)
}

func (f *fakeEvents) count(eventType string) int {
	n := 0
	for _, e := range f.published {
		if e == eventType {
			n++
		}
	}
	return n
}

type fakeReviewStore struct {
	records         map[string]models.ReviewRecord
	nextID          int64
	failUpdates     int
	createConflicts int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{records: make(map[string]models.ReviewRecord)}
}

func reviewKey(userID, itemID string) string { return userID + "|" + itemID }

func (f *fakeReviewStore) GetByUserAndItem(ctx context.Context, userID, itemID string) (*models.ReviewRecord, error) {
	r, ok := f.records[reviewKey(userID, itemID)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &r, nil
}

func (f *fakeReviewStore) ListByUser(ctx context.Context, userID string) ([]models.ReviewRecord, error) {
	var out []models.ReviewRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) Create(ctx context.Context, record *models.ReviewRecord) error {
	f.nextID++
	if f.createConflicts > 0 {
		// A rival request inserted the same key first
		f.createConflicts--
		rival := *record
		rival.ID = f.nextID
		rival.Version = 0
		f.records[reviewKey(rival.UserID, rival.ItemID)] = rival
		return database.ErrConflict
	}
	record.ID = f.nextID
	record.Version = 0
	f.records[reviewKey(record.UserID, record.ItemID)] = *record
	return nil
}

func (f *fakeReviewStore) Update(ctx context.Context, record *models.ReviewRecord) error {
	if f.failUpdates > 0 {
		f.failUpdates--
		return database.ErrConflict
	}
	key := reviewKey(record.UserID, record.ItemID)
	stored, ok := f.records[key]
	if !ok || stored.Version != record.Version {
		return database.ErrConflict
	}
	record.Version++
	f.records[key] = *record
	return nil
}

type fakePerformanceStore struct {
	records         map[string]models.PerformanceRecord
	nextID          int64
	failUpdates     int
	createConflicts int
}

func newFakePerformanceStore() *fakePerformanceStore {
	return &fakePerformanceStore{records: make(map[string]models.PerformanceRecord)}
}

func performanceKey(userID, skillID, itemID string) string {
	return userID + "|" + skillID + "|" + itemID
}

func (f *fakePerformanceStore) GetByKey(ctx context.Context, userID, skillID, itemID string) (*models.PerformanceRecord, error) {
	r, ok := f.records[performanceKey(userID, skillID, itemID)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &r, nil
}

func (f *fakePerformanceStore) ListItemsBySkill(ctx context.Context, userID, skillID string) ([]models.PerformanceRecord, error) {
	var out []models.PerformanceRecord
	for _, r := range f.records {
		if r.UserID == userID && r.SkillID == skillID && r.ItemID != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePerformanceStore) Create(ctx context.Context, record *models.PerformanceRecord) error {
	f.nextID++
	if f.createConflicts > 0 {
		// A rival request inserted the same key first
		f.createConflicts--
		rival := *record
		rival.ID = f.nextID
		rival.Version = 0
		f.records[performanceKey(rival.UserID, rival.SkillID, rival.ItemID)] = rival
		return database.ErrConflict
	}
	record.ID = f.nextID
	record.Version = 0
	f.records[performanceKey(record.UserID, record.SkillID, record.ItemID)] = *record
	return nil
}

func (f *fakePerformanceStore) Update(ctx context.Context, record *models.PerformanceRecord) error {
	if f.failUpdates > 0 {
		f.failUpdates--
		return database.ErrConflict
	}
	key := performanceKey(record.UserID, record.SkillID, record.ItemID)
	stored, ok := f.records[key]
	if !ok || stored.Version != record.Version {
		return database.ErrConflict
	}
	record.Version++
	f.records[key] = *record
	return nil
}

type fakeProgressStore struct {
	docs        map[string]models.PathProgress
	failUpdates int
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{docs: make(map[string]models.PathProgress)}
}

func (f *fakeProgressStore) Get(ctx context.Context, userID string) (*models.PathProgress, error) {
	p, ok := f.docs[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProgressStore) Create(ctx context.Context, progress *models.PathProgress) error {
	progress.Version = 0
	f.docs[progress.UserID] = *progress
	return nil
}

func (f *fakeProgressStore) Update(ctx context.Context, progress *models.PathProgress) error {
	if f.failUpdates > 0 {
		f.failUpdates--
		return database.ErrConflict
	}
	stored, ok := f.docs[progress.UserID]
	if !ok || stored.Version != progress.Version {
		return database.ErrConflict
	}
	progress.Version++
	f.docs[progress.UserID] = *progress
	return nil
}

type fakeEconomyStore struct {
	states      map[string]models.EconomyState
	failUpdates int
	gets        int
}

func newFakeEconomyStore() *fakeEconomyStore {
	return &fakeEconomyStore{states: make(map[string]models.EconomyState)}
}

func (f *fakeEconomyStore) Get(ctx context.Context, userID string) (*models.EconomyState, error) {
	f.gets++
	s, ok := f.states[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &s, nil
}

func (f *fakeEconomyStore) Create(ctx context.Context, state *models.EconomyState) error {
	state.Version = 0
	f.states[state.UserID] = *state
	return nil
}

func (f *fakeEconomyStore) Update(ctx context.Context, state *models.EconomyState) error {
	if f.failUpdates > 0 {
		f.failUpdates--
		return database.ErrConflict
	}
	stored, ok := f.states[state.UserID]
	if !ok || stored.Version != state.Version {
		return database.ErrConflict
	}
	state.Version++
	f.states[state.UserID] = *state
	return nil
}
