// Package eventlog records every request decision and fans it out to
// realtime subscribers.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/models"
	"github.com/sentrywaf/waf/internal/realtime"
	"gorm.io/gorm"
)

type Writer struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func New(db *gorm.DB, hub *realtime.Hub) *Writer {
	return &Writer{db: db, hub: hub}
}

// Fields is the input to Record: one row per request decision.
type Fields struct {
	IPAddress   string
	Method      string
	Endpoint    string
	Headers     models.JSONMap
	RequestBody *string
	ThreatScore int
	ActionTaken string
	ThreatTypes []string
}

// Record inserts an attack log row and broadcasts it to realtime
// subscribers. A broadcast failure is logged but never returned: the
// publish step must not fail the request that triggered it.
func (w *Writer) Record(ctx context.Context, f Fields) (*models.AttackLog, error) {
	entry := &models.AttackLog{
		IPAddress:   f.IPAddress,
		Method:      f.Method,
		Endpoint:    f.Endpoint,
		Headers:     f.Headers,
		RequestBody: f.RequestBody,
		ThreatScore: f.ThreatScore,
		ActionTaken: f.ActionTaken,
		ThreatTypes: models.StringList(f.ThreatTypes),
	}

	if err := w.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("eventlog: insert attack log: %w", err)
	}

	w.publish(entry)
	return entry, nil
}

// wsEnvelope matches the {"type","data"} shape the dashboard's WebSocket
// client expects for every message kind it receives.
type wsEnvelope struct {
	Type string            `json:"type"`
	Data *models.AttackLog `json:"data"`
}

func (w *Writer) publish(entry *models.AttackLog) {
	if w.hub == nil {
		return
	}
	payload, err := json.Marshal(wsEnvelope{Type: "new_log", Data: entry})
	if err != nil {
		logger.WithFields(map[string]interface{}{"id": entry.ID, "error": err.Error()}).
			Error("eventlog: failed to marshal attack log for broadcast")
		return
	}
	w.hub.Broadcast(payload)
}
