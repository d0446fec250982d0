package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"account-ledger/internal/httpapi"
	"account-ledger/internal/ledger"
	"account-ledger/internal/notify"
	"account-ledger/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func mustEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func mustIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func main() {
	start := time.Now()
	_ = godotenv.Load()

	dsn := mustEnv("LEDGER_DB_DSN", "")
	redisAddr := mustEnv("LEDGER_REDIS_ADDR", "")
	addr := mustEnv("LEDGER_HTTP_ADDR", ":8080")
	migrate := mustEnv("LEDGER_DB_MIGRATE", "0") == "1"

	log.Printf("[startup] begin addr=%s migrate=%t", addr, migrate)

	// Startup context
	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startCancel()

	var accounts store.AccountStore
	if dsn == "" {
		log.Printf("[startup] no LEDGER_DB_DSN, using in-memory store")
		accounts = store.NewMemory()
	} else {
		// DB pool sizing
		cpu := runtime.GOMAXPROCS(0)
		defMaxConns := clamp(cpu*4, 4, 50)
		maxConns := mustIntEnv("LEDGER_DB_MAX_CONNS", defMaxConns)

		log.Printf("[startup] cpu=%d maxConns=%d", cpu, maxConns)

		cfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			log.Fatalf("[startup] parse dsn failed: %v", err)
		}

		cfg.MaxConns = int32(maxConns)
		cfg.MinConns = 1
		cfg.HealthCheckPeriod = 10 * time.Second
		cfg.MaxConnLifetime = 30 * time.Minute
		cfg.MaxConnIdleTime = 5 * time.Minute

		log.Printf("[startup] connecting to DB")
		pool, err := pgxpool.NewWithConfig(startCtx, cfg)
		if err != nil {
			log.Fatalf("[startup] db connect failed: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(startCtx); err != nil {
			log.Fatalf("[startup] db ping failed: %v", err)
		}

		if migrate {
			log.Printf("[startup] running migrations")
			if err := store.Migrate(startCtx, pool); err != nil {
				log.Fatalf("[startup] migrations failed: %v", err)
			}
			log.Printf("[startup] migrations complete")
		} else {
			log.Printf("[startup] migrations disabled")
		}

		accounts = store.NewPostgres(pool)
	}

	var notifier notify.Notifier
	if redisAddr == "" {
		log.Printf("[startup] no LEDGER_REDIS_ADDR, notifications go to the log")
		notifier = notify.NewLog()
	} else {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: mustEnv("LEDGER_REDIS_PASS", ""),
		})
		defer rdb.Close()

		if err := rdb.Ping(startCtx).Err(); err != nil {
			log.Fatalf("[startup] redis ping failed: %v", err)
		}
		notifier = notify.NewRedis(rdb, mustEnv("LEDGER_NOTIFY_STREAM", notify.DefaultStream))
	}

	engine := ledger.New(accounts, notifier)
	h := httpapi.NewHandlers(engine)

	srv := &http.Server{
		Addr:    addr,
		Handler: httpapi.Router(h),

		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf(
		"[startup] ready in %s, listening on %s",
		time.Since(start).Truncate(time.Millisecond),
		addr,
	)

	log.Fatal(srv.ListenAndServe())
}
