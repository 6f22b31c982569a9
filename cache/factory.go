package cache

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// Open selects a cache driver from the environment.
//
//	CACHE_DRIVER: redis|sqlite|memory (default sqlite)
//	CACHE_SQLITE_PATH: file path when driver=sqlite (default ./cache.db)
func Open(rdb *redis.Client) (Store, error) {
	driver := os.Getenv("CACHE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("cache driver redis requires a redis client")
		}
		return NewRedisStore(rdb), nil
	case DriverSQLite:
		path := os.Getenv("CACHE_SQLITE_PATH")
		if path == "" {
			path = "./cache.db"
		}
		return NewSQLiteStore(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %s", driver)
	}
}
