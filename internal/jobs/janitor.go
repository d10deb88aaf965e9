package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stayfinder/api/internal/service"
)

// TokenJanitor periodically deletes expired remember tokens. Session
// records expire on their own through the redis TTL.
type TokenJanitor struct {
	cron     *cron.Cron
	sessions *service.SessionManager
	log      zerolog.Logger
}

func NewTokenJanitor(sessions *service.SessionManager, log zerolog.Logger) *TokenJanitor {
	c := cron.New(cron.WithSeconds())
	return &TokenJanitor{
		cron:     c,
		sessions: sessions,
		log:      log,
	}
}

func (j *TokenJanitor) Start() error {
	if _, err := j.cron.AddFunc("0 0 * * * *", j.sweep); err != nil { // hourly
		return err
	}

	j.cron.Start()
	return nil
}

// Stop waits for any in-flight sweep to finish, up to a short deadline.
func (j *TokenJanitor) Stop() {
	ctx := j.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		j.log.Warn().Msg("token janitor stop timed out")
	}
}

func (j *TokenJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.sessions.CleanExpiredTokens(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("remember token sweep failed")
		return
	}
	if count > 0 {
		j.log.Info().Int64("deleted", count).Msg("expired remember tokens swept")
	}
}
