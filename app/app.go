package app

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"relief_resource_sync/cache"
	"relief_resource_sync/config"
	"relief_resource_sync/engine"
	"relief_resource_sync/images"
	"relief_resource_sync/netmon"
	"relief_resource_sync/queue"
	"relief_resource_sync/remote"
	"relief_resource_sync/store"
)

// Aliases so handlers read the way gin code usually does.
type Ctx = gin.Context
type H = gin.H

// App aggregates every dependency of the sync engine and its HTTP surface.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB      // nil when REMOTE_DRIVER=memory
	RDB    *redis.Client // nil when no redis-backed component is configured
	Config Config

	Store  *store.Store
	Engine *engine.Engine
	Queue  *queue.Queue
	Net    *netmon.Monitor
}

// Config is read from the environment.
type Config struct {
	RemoteDriver string // postgres|memory
	RedisAddr    string
	RedisPwd     string
	WebOrigin    string
	Port         string
}

func MustNew() *App {
	cfg := loadConfig()
	ctx := context.Background()

	var (
		dbConn *gorm.DB
		rdb    *redis.Client
		rs     remote.Service
	)
	switch cfg.RemoteDriver {
	case "memory":
		rs = remote.NewMemoryService()
	default:
		dbConn = remote.ConnectDB()
		rdb = mustRedis(cfg)
		rs = remote.NewGormService(dbConn, rdb)
	}

	// The redis cache driver needs a client even in memory remote mode.
	if rdb == nil && config.Get("CACHE_DRIVER", "") == string(cache.DriverRedis) {
		rdb = mustRedis(cfg)
	}
	ca, err := cache.Open(rdb)
	if err != nil {
		log.Fatalf("open cache store: %v", err)
	}
	img, err := images.Open(ctx)
	if err != nil {
		log.Fatalf("open image store: %v", err)
	}

	st := store.New()
	q := queue.New(ca, "")
	net := netmon.New(config.Get("START_OFFLINE", "") == "")
	eng := engine.New(st, rs, ca, q, net, img)

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg,
		Store: st, Engine: eng, Queue: q, Net: net,
	}
}

func (a *App) Close() {
	a.Engine.Close()
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
}

func mustRedis(cfg Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}
	return rdb
}

func loadConfig() Config {
	return Config{
		RemoteDriver: config.Get("REMOTE_DRIVER", "postgres"),
		RedisAddr:    config.Get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:     config.Get("REDIS_PASSWORD", ""),
		WebOrigin:    config.Get("WEB_ORIGIN", "http://localhost:3000"),
		Port:         config.Get("PORT", "3001"),
	}
}
