package session

import (
	"context"
	"math/rand"
	"time"

	"github.com/example/lingopath/internal/service"
)

// ItemSource describes where a practice item came from
type ItemSource string

const (
	// DueReview means the item came from the spaced-repetition due queue
	DueReview ItemSource = "due_review"
	// WeakArea means the item has a low accuracy in its skill
	WeakArea ItemSource = "weak_area"
)

// Item is one exercise slot in a practice session
type Item struct {
	ItemID     string     `json:"item_id"`
	Source     ItemSource `json:"source"`
	Difficulty float64    `json:"difficulty"`
}

// Session is a generated practice run for one user
type Session struct {
	UserID  string `json:"user_id"`
	SkillID string `json:"skill_id,omitempty"`
	Items   []Item `json:"items"`
}

// Builder assembles practice sessions from the due queue and weak areas.
// Builders hold no mutable state, so one instance can serve concurrent
// requests.
type Builder struct {
	reviews     *service.ReviewService
	performance *service.PerformanceService
}

// NewBuilder creates a session builder
func NewBuilder(reviews *service.ReviewService, performance *service.PerformanceService) *Builder {
	return &Builder{
		reviews:     reviews,
		performance: performance,
	}
}

// Build generates a practice session of up to itemCount items. Due
// reviews come first; when a skill is given, its weak areas fill the
// remaining slots. Items inside each group are shuffled so repeated
// sessions don't drill the same order.
func (b *Builder) Build(ctx context.Context, userID, skillID string, itemCount, baseDifficulty int) (*Session, error) {
	if itemCount <= 0 {
		itemCount = 10
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	session := &Session{
		UserID:  userID,
		SkillID: skillID,
	}

	due, err := b.reviews.DueItems(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	dueItems := make([]Item, 0, len(due))
	for _, record := range due {
		dueItems = append(dueItems, Item{ItemID: record.ItemID, Source: DueReview})
	}
	rnd.Shuffle(len(dueItems), func(i, j int) {
		dueItems[i], dueItems[j] = dueItems[j], dueItems[i]
	})
	if len(dueItems) > itemCount {
		dueItems = dueItems[:itemCount]
	}
	session.Items = dueItems

	if skillID != "" && len(session.Items) < itemCount {
		weak, err := b.performance.WeakAreas(ctx, userID, skillID)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool, len(session.Items))
		for _, item := range session.Items {
			seen[item.ItemID] = true
		}

		weakItems := make([]Item, 0, len(weak))
		for _, itemID := range weak {
			if !seen[itemID] {
				weakItems = append(weakItems, Item{ItemID: itemID, Source: WeakArea})
			}
		}
		rnd.Shuffle(len(weakItems), func(i, j int) {
			weakItems[i], weakItems[j] = weakItems[j], weakItems[i]
		})

		remaining := itemCount - len(session.Items)
		if len(weakItems) > remaining {
			weakItems = weakItems[:remaining]
		}
		session.Items = append(session.Items, weakItems...)
	}

	if skillID != "" {
		for i := range session.Items {
			adjustment, err := b.performance.CalculateDifficulty(ctx, userID, skillID, session.Items[i].ItemID, baseDifficulty)
			if err != nil {
				return nil, err
			}
			session.Items[i].Difficulty = adjustment.Recommended
		}
	} else {
		for i := range session.Items {
			session.Items[i].Difficulty = float64(baseDifficulty)
		}
	}

	return session, nil
}
