package blocklist

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sentrywaf/waf/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BlockedIP{}))

	// Point at a closed local port so redis calls fail fast and
	// deterministically, exercising the fail-open path.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	return New(client, db)
}

func TestCheck_FailsOpenWhenRedisUnavailable(t *testing.T) {
	c := newTestChecker(t)
	blocked, _, err := c.Check(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestCheckHard_PermanentBlock(t *testing.T) {
	c := newTestChecker(t)
	ctx := context.Background()
	reason := "manual block"
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "9.9.9.9", Reason: &reason}).Error)

	blocked, gotReason, err := c.checkHard(ctx, "9.9.9.9")
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, reason, gotReason)
}

func TestCheckHard_ExpiredBlockIsNonBlocking(t *testing.T) {
	c := newTestChecker(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "8.8.8.8", ExpiresAt: &past}).Error)

	blocked, _, err := c.checkHard(ctx, "8.8.8.8")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestCheckHard_FutureExpiryIsBlocking(t *testing.T) {
	c := newTestChecker(t)
	ctx := context.Background()
	future := time.Now().Add(time.Hour)
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "7.7.7.7", ExpiresAt: &future}).Error)

	blocked, _, err := c.checkHard(ctx, "7.7.7.7")
	require.NoError(t, err)
	require.True(t, blocked)
}

func TestUnblock_NotFound(t *testing.T) {
	c := newTestChecker(t)
	err := c.Unblock(context.Background(), "0.0.0.0")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnblock_RemovesRow(t *testing.T) {
	c := newTestChecker(t)
	ctx := context.Background()
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "5.5.5.5"}).Error)

	require.NoError(t, c.Unblock(ctx, "5.5.5.5"))

	blocked, _, err := c.checkHard(ctx, "5.5.5.5")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestList_OrdersNewestFirst(t *testing.T) {
	c := newTestChecker(t)
	ctx := context.Background()
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "1.1.1.1", CreatedAt: time.Now().Add(-time.Minute)}).Error)
	require.NoError(t, c.db.Create(&models.BlockedIP{IPAddress: "2.2.2.2", CreatedAt: time.Now()}).Error)

	rows, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "2.2.2.2", rows[0].IPAddress)
}
