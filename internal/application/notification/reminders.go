package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/notification"
	"github.com/maillots/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ReminderResult summarizes a cart reminder run
type ReminderResult struct {
	DryRun     bool        `json:"dry_run"`
	Cutoff     time.Time   `json:"cutoff"`
	Candidates int         `json:"candidates"`
	Sent       int         `json:"sent"`
	Skipped    int         `json:"skipped"`
	WouldSend  int         `json:"would_send"`
	Failed     int         `json:"failed"`
	Recipients []uuid.UUID `json:"recipients,omitempty"`
}

// SendCartReminders reminds every user whose cart holds lines older than
// hours. Users already reminded since the cutoff are skipped.
func (s *EmailService) SendCartReminders(ctx context.Context, hours int, dryRun bool) (*ReminderResult, error) {
	if hours <= 0 {
		return nil, shared.ErrInvalidInput.Withf("hours must be positive, got %d", hours)
	}
	cutoff := s.now().Add(-time.Duration(hours) * time.Hour)
	result := &ReminderResult{DryRun: dryRun, Cutoff: cutoff}

	userIDs, err := s.carts.FindUsersWithItemsBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find abandoned carts: %w", err)
	}
	result.Candidates = len(userIDs)

	for _, userID := range userIDs {
		items, err := s.carts.FindItemsBefore(ctx, userID, cutoff)
		if err != nil {
			return result, fmt.Errorf("failed to load cart of user %s: %w", userID, err)
		}
		if len(items) == 0 {
			continue
		}

		reminded, err := s.logs.ExistsForUserSince(ctx, userID, notification.TemplateCartReminder, cutoff)
		if err != nil {
			return result, fmt.Errorf("failed to check reminder log: %w", err)
		}
		if reminded {
			result.Skipped++
			continue
		}

		if dryRun {
			result.WouldSend++
			result.Recipients = append(result.Recipients, userID)
			continue
		}

		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				result.Failed++
				continue
			}
			return result, fmt.Errorf("failed to load user %s: %w", userID, err)
		}
		sent, err := s.SendCartReminder(ctx, user, items)
		if err != nil {
			return result, err
		}
		if sent {
			result.Sent++
			result.Recipients = append(result.Recipients, userID)
		} else {
			result.Failed++
		}
	}

	s.logger.Info("Cart reminders processed",
		zap.Bool("dry_run", dryRun),
		zap.Int("hours", hours),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("would_send", result.WouldSend),
		zap.Int("failed", result.Failed))
	return result, nil
}
