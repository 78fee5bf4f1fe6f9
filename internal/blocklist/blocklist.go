// Package blocklist answers whether a client IP should be rejected before
// the inspection engine ever runs, consulting an ephemeral soft tier ahead
// of the persistent hard tier.
package blocklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/models"
	"gorm.io/gorm"
)

// softKeyPrefix namespaces the ephemeral blocklist key. The core never
// writes this key itself — it is populated by operators or out-of-band
// automation and is read-only from here.
const softKeyPrefix = "blocked:"

type Checker struct {
	redis *redis.Client
	db    *gorm.DB
}

func New(redisClient *redis.Client, db *gorm.DB) *Checker {
	return &Checker{redis: redisClient, db: db}
}

// Check reports whether ip is blocked and, if so, a short human-readable
// reason. Redis errors other than a clean miss fail open: the soft tier is
// treated as a non-hit and the failure is logged, per the error-handling
// contract (redis availability is surfaced separately via /ready).
func (c *Checker) Check(ctx context.Context, ip string) (bool, string, error) {
	blocked, err := c.checkSoft(ctx, ip)
	if err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip, "error": err.Error()}).
			Warn("blocklist: soft tier check failed, failing open")
	} else if blocked {
		return true, "soft blocklist", nil
	}

	hit, reason, err := c.checkHard(ctx, ip)
	if err != nil {
		return false, "", err
	}
	return hit, reason, nil
}

func (c *Checker) checkSoft(ctx context.Context, ip string) (bool, error) {
	_, err := c.redis.Get(ctx, softKeyPrefix+ip).Result()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, err
}

func (c *Checker) checkHard(ctx context.Context, ip string) (bool, string, error) {
	var row models.BlockedIP
	err := c.db.WithContext(ctx).
		Where("ip_address = ? AND (expires_at IS NULL OR expires_at > ?)", ip, time.Now().UTC()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("blocklist: hard tier lookup: %w", err)
	}
	reason := "hard blocklist"
	if row.Reason != nil && *row.Reason != "" {
		reason = *row.Reason
	}
	return true, reason, nil
}

// List returns every hard-blocked IP, newest first, for the admin surface.
func (c *Checker) List(ctx context.Context) ([]models.BlockedIP, error) {
	var rows []models.BlockedIP
	err := c.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("blocklist: list blocked ips: %w", err)
	}
	return rows, nil
}

var ErrNotFound = errors.New("blocklist: ip not found")

// Unblock removes a hard-blocked IP. It has no effect on the soft tier,
// which this package never writes to.
func (c *Checker) Unblock(ctx context.Context, ip string) error {
	res := c.db.WithContext(ctx).Where("ip_address = ?", ip).Delete(&models.BlockedIP{})
	if res.Error != nil {
		return fmt.Errorf("blocklist: unblock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
