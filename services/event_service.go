package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/repositories"
)

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int) error
}

// Date принимает RFC 3339 или YYYY-MM-DD.
type CreateEventInput struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Date     *string `json:"date"`
}

// UpdateEventInput: пустая строка в Date убирает дату.
type UpdateEventInput struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Date     *string `json:"date"`
}

type eventService struct {
	eventRepo repositories.EventRepository
}

func NewEventService(eventRepo repositories.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

func mapEventRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrEventInUse):
		return ErrEventInUse
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEventNameRequired
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, ErrEventCategoryRequired
	}
	date, err := parseEventDate(input.Date)
	if err != nil {
		return nil, err
	}

	event := &models.Event{Name: name, Category: category, Date: date}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapEventRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		return []models.Event{}, nil
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrEventNameRequired
		}
		event.Name = name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, ErrEventCategoryRequired
		}
		event.Category = category
	}
	if input.Date != nil {
		date, err := parseEventDate(input.Date)
		if err != nil {
			return nil, err
		}
		event.Date = date
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if mapped := mapEventRepoError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id int) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if mapped := mapEventRepoError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	return nil
}
