package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/crewlink/server/cache"
	dbsqlite "github.com/crewlink/server/db/sqlite"
	"github.com/crewlink/server/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq int64

// SetupTestDB creates an in-memory SQLite DB and runs AutoMigrate.
// Each call gets its own named shared-cache database so parallel tests
// do not see each other's rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	n := atomic.AddInt64(&dbSeq, 1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := dbsqlite.Open(dsn)
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates a local cache and pub/sub (no Redis required).
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	cfg := cache.Config{} // empty RedisAddr → local backend
	c, err := cache.NewCache(cfg)
	require.NoError(t, err, "SetupTestCache: NewCache")
	ps, err := cache.NewPubSub(cfg)
	require.NoError(t, err, "SetupTestCache: NewPubSub")
	return c, ps
}
