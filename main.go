package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/santhossiva2002/taskflow/activity"
	"github.com/santhossiva2002/taskflow/api"
	"github.com/santhossiva2002/taskflow/board"
	"github.com/santhossiva2002/taskflow/docstore"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	var store docstore.Store
	switch backend := os.Getenv("STORAGE_BACKEND"); backend {
	case "memory":
		log.Warn("using in-process storage, data will not survive a restart")
		store = docstore.NewMemory()
	case "", "tables":
		connStr := os.Getenv("STORAGE_CONNECTION_STRING")
		table := os.Getenv("DOCUMENTS_TABLE")
		if connStr == "" || table == "" {
			log.Fatal("missing storage config")
		}
		redisConn := os.Getenv("REDIS_CONNECTION_STRING")
		if redisConn == "" {
			log.Fatal("missing redis config")
		}
		rc := redis.NewClient(redisOptions(redisConn))

		cacheTTL := 24 * time.Hour
		if v := os.Getenv("SNAPSHOT_CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				log.Fatalf("invalid SNAPSHOT_CACHE_TTL: %v", err)
			}
			cacheTTL = d
		}
		var err error
		store, err = docstore.NewTables(connStr, table, rc, cacheTTL)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
	default:
		log.Fatalf("unknown STORAGE_BACKEND %q", backend)
	}

	recorder := activity.NewRecorder(store)
	core := board.New(store, recorder)
	feed := activity.NewFeed(store)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-User-Name", "X-User-Role"},
	}))

	logger := log.New()
	if err := api.Register(context.Background(), e, core, feed, logger); err != nil {
		log.Fatalf("register: %v", err)
	}

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("TASKFLOW_PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// redisOptions parses either a redis URL or the comma-separated
// host,password=...,ssl=... form some managed providers hand out.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
