package api

import (
	"context"
	"fmt"
	"strings"
)

// LectureStats returns lecture counts keyed by status string.
func (s *Service) LectureStats(ctx context.Context) (map[string]int, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeLectureStats(stats), nil
}

// Health returns aggregated lecture counts per lifecycle state.
func (s *Service) Health(ctx context.Context) (LibraryHealth, error) {
	summary, err := s.store.Health(ctx)
	if err != nil {
		return LibraryHealth{}, err
	}
	return FromHealthSummary(summary), nil
}

// DatabaseHealth runs library database diagnostics.
func (s *Service) DatabaseHealth(ctx context.Context) (DatabaseHealth, error) {
	health, err := s.store.CheckHealth(ctx)
	if err != nil {
		return DatabaseHealth{}, err
	}
	return FromDatabaseHealth(health), nil
}

// TestNotification sends a test push. The boolean reports whether anything
// went out; an unconfigured topic is not an error.
func (s *Service) TestNotification(ctx context.Context) (bool, string, error) {
	topic := strings.TrimSpace(s.cfg.Notifications.NtfyTopic)
	if s.notifier == nil || topic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := s.notifier.TestNotification(ctx); err != nil {
		return false, "", err
	}
	return true, fmt.Sprintf("test notification sent to %s", topic), nil
}
