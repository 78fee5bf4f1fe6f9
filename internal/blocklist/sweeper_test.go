package blocklist

import (
	"testing"
	"time"

	"github.com/sentrywaf/waf/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RemovesExpiredRows(t *testing.T) {
	c := newTestChecker(t)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "1.1.1.1", ExpiresAt: &past}).Error)
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "2.2.2.2", ExpiresAt: &future}).Error)
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "3.3.3.3"}).Error)

	sweeper, err := NewSweeper(c, "@hourly")
	require.NoError(t, err)
	sweeper.sweep()

	var rows []models.BlockedIP
	require.NoError(t, c.db.Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.NotEqual(t, "1.1.1.1", r.IPAddress)
	}
}

func TestNewSweeper_RejectsInvalidSpec(t *testing.T) {
	c := newTestChecker(t)
	_, err := NewSweeper(c, "not-a-valid-cron-spec")
	require.Error(t, err)
}
