package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("notification not found")
	ErrForbidden = errors.New("notification belongs to another user")
)

type Service struct {
	notifications Repository
}

func NewService(notifications Repository) *Service {
	return &Service{notifications: notifications}
}

func (s *Service) Create(ctx context.Context, n *Notification) error {
	return s.notifications.Create(ctx, n)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.notifications.ListByUser(ctx, userID, limit, offset)
}

// MarkRead flips the read flag after verifying the notification belongs to
// the requester.
func (s *Service) MarkRead(ctx context.Context, id, requesterID uuid.UUID) (*Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != requesterID {
		return nil, ErrForbidden
	}
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.IsRead = true
	return n, nil
}
