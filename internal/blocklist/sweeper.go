package blocklist

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/models"
)

// Sweeper periodically deletes expired hard-block rows. Expired rows are
// already treated as non-blocking at read time (Checker.checkHard filters
// them out), so the sweeper is pure housekeeping: it keeps the
// blocked_ips table from accumulating rows nobody will ever read as a hit
// again.
type Sweeper struct {
	checker *Checker
	cron    *cron.Cron
}

// NewSweeper schedules a sweep to run on the given cron spec (e.g.
// "@hourly"). Call Start to begin running it.
func NewSweeper(checker *Checker, spec string) (*Sweeper, error) {
	c := cron.New()
	s := &Sweeper{checker: checker, cron: c}
	if _, err := c.AddFunc(spec, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res := s.checker.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now().UTC()).
		Delete(&models.BlockedIP{})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{"error": res.Error.Error()}).
			Warn("blocklist: sweep of expired hard blocks failed")
		return
	}
	if res.RowsAffected > 0 {
		logger.WithFields(map[string]interface{}{"rows": res.RowsAffected}).
			Info("blocklist: swept expired hard blocks")
	}
}
