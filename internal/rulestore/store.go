// Package rulestore manages the lifecycle of WAF rules: seeding defaults,
// listing the rules the inspection engine should run, and toggling rules
// on/off from the admin surface.
package rulestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/sentrywaf/waf/internal/models"
	"gorm.io/gorm"
)

// seedLockKey is an arbitrary, fixed advisory lock ID used to serialize
// concurrent seed attempts across replicas sharing one Postgres instance.
const seedLockKey = 872394110

var ErrNotFound = errors.New("rulestore: rule not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SeedIfEmpty inserts the default rule set exactly once. An advisory lock
// held for the duration of the transaction prevents two processes starting
// concurrently from racing to double-seed; the count check inside the
// transaction makes the operation idempotent even without the lock.
func (s *Store) SeedIfEmpty(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", seedLockKey).Error; err != nil {
				return fmt.Errorf("rulestore: acquire advisory lock: %w", err)
			}
		}

		var count int64
		if err := tx.Model(&models.Rule{}).Count(&count).Error; err != nil {
			return fmt.Errorf("rulestore: count existing rules: %w", err)
		}
		if count > 0 {
			return nil
		}

		if err := tx.Create(&defaultRules).Error; err != nil {
			return fmt.Errorf("rulestore: insert default rules: %w", err)
		}
		return nil
	})
}

// ListEnabled returns the rules the inspection engine should evaluate,
// ordered by creation time so scoring order is stable across calls.
func (s *Store) ListEnabled(ctx context.Context) ([]models.Rule, error) {
	var rules []models.Rule
	err := s.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("created_at asc").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("rulestore: list enabled rules: %w", err)
	}
	return rules, nil
}

// List returns every rule regardless of enabled state, for the admin
// listing endpoint.
func (s *Store) List(ctx context.Context) ([]models.Rule, error) {
	var rules []models.Rule
	err := s.db.WithContext(ctx).Order("created_at asc").Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("rulestore: list rules: %w", err)
	}
	return rules, nil
}

// Toggle flips a rule's Enabled flag and returns the updated row.
func (s *Store) Toggle(ctx context.Context, id string) (*models.Rule, error) {
	var rule models.Rule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rule, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("rulestore: load rule: %w", err)
		}
		rule.Enabled = !rule.Enabled
		if err := tx.Model(&rule).Update("enabled", rule.Enabled).Error; err != nil {
			return fmt.Errorf("rulestore: update rule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
