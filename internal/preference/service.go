package preference

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the preference store. cache may be nil.
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the stored preferences of userID, or the defaults when none
// were saved. Cache failures are logged and fall through to the store.
func (s *Service) Get(ctx context.Context, userID int64) (*Preferences, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("preference cache read failed", "error", err, "user_id", userID)
		} else if ok {
			return cached, nil
		}
	}

	prefs, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNoPreferences) {
		prefs = Defaults(userID)
	} else if err != nil {
		s.logger.Error("failed to load notification preferences", "error", err, "user_id", userID)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, prefs); err != nil {
			s.logger.Warn("preference cache write failed", "error", err, "user_id", userID)
		}
	}
	return prefs, nil
}

func (s *Service) Update(ctx context.Context, userID int64, dto UpdatePreferencesDTO) (*Preferences, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	prefs := dto.ToPreferences(userID)
	prefs.UpdatedAt = s.now().UTC()

	if err := s.repo.Upsert(ctx, prefs); err != nil {
		s.logger.Error("failed to store notification preferences", "error", err, "user_id", userID)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, userID); err != nil {
			s.logger.Warn("preference cache invalidation failed", "error", err, "user_id", userID)
		}
	}

	s.logger.Info("notification preferences updated", "user_id", userID, "frequency", prefs.Frequency)
	return prefs, nil
}
