package worker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// TokenCleaner удаляет истекшие refresh токены
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// TokenJanitor периодически чистит таблицу refresh_tokens
type TokenJanitor struct {
	cleaner  TokenCleaner
	interval time.Duration
	logger   log.FieldLogger
}

func NewTokenJanitor(cleaner TokenCleaner, interval time.Duration, logger log.FieldLogger) *TokenJanitor {
	return &TokenJanitor{cleaner: cleaner, interval: interval, logger: logger}
}

func (j *TokenJanitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *TokenJanitor) sweep(ctx context.Context) {
	n, err := j.cleaner.CleanupExpiredTokens(ctx)
	if err != nil {
		j.logger.WithError(err).Warn("не удалось удалить истекшие refresh токены")
		return
	}
	if n > 0 {
		j.logger.WithField("count", n).Info("удалены истекшие refresh токены")
	}
}
