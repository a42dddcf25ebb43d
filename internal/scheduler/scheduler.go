package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/event"
	"github.com/example/lingopath/internal/service"
	"github.com/go-co-op/gocron"
)

// Default window for due-review reminders (hours, UTC)
const (
	DefaultReminderStartHour = 8
	DefaultReminderEndHour   = 22
)

// Scheduler manages the background jobs: an hourly heart regeneration
// sweep and an hourly due-review reminder pass.
type Scheduler struct {
	scheduler *gocron.Scheduler
	economy   *service.EconomyService
	reviews   *service.ReviewService
	events    service.Events
}

// New creates a new scheduler instance
func New(economy *service.EconomyService, reviews *service.ReviewService, events service.Events) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		economy:   economy,
		reviews:   reviews,
		events:    events,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.regenerateHearts)
	s.scheduler.Every(1).Hour().Do(s.sendDueReminders)

	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// regenerateHearts credits elapsed regeneration intervals for every user,
// so hearts refill even for users who never call the regenerate endpoint
func (s *Scheduler) regenerateHearts() {
	ctx := context.Background()

	economyRepo := database.NewEconomyRepository()
	userIDs, err := economyRepo.ListUserIDs(ctx)
	if err != nil {
		log.Printf("Error listing users for heart regeneration: %v", err)
		return
	}

	for _, userID := range userIDs {
		if _, err := s.economy.RegenerateHearts(ctx, userID); err != nil {
			log.Printf("Error regenerating hearts for user %s: %v", userID, err)
		}
	}
}

// sendDueReminders publishes a reminder event for every user with due
// reviews, inside the configured notification window
func (s *Scheduler) sendDueReminders() {
	currentHour := time.Now().UTC().Hour()

	startHour := DefaultReminderStartHour
	endHour := DefaultReminderEndHour

	if raw := os.Getenv("REMINDER_START_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			startHour = h
		}
	}
	if raw := os.Getenv("REMINDER_END_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			endHour = h
		}
	}

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside reminder hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	ctx := context.Background()

	reviewRepo := database.NewReviewRepository()
	userIDs, err := reviewRepo.ListUserIDs(ctx)
	if err != nil {
		log.Printf("Error listing users for due reminders: %v", err)
		return
	}

	for _, userID := range userIDs {
		due, err := s.reviews.DueItems(ctx, userID, 0)
		if err != nil {
			log.Printf("Error getting due items for user %s: %v", userID, err)
			continue
		}
		if len(due) == 0 {
			continue
		}

		s.events.Publish(event.DueReminder, map[string]interface{}{
			"user_id":   userID,
			"due_count": len(due),
		})
	}
}

// RunManualCheck forces a reminder check for a specific user
func (s *Scheduler) RunManualCheck(userID string) error {
	ctx := context.Background()

	due, err := s.reviews.DueItems(ctx, userID, 0)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	s.events.Publish(event.DueReminder, map[string]interface{}{
		"user_id":   userID,
		"due_count": len(due),
	})
	return nil
}
