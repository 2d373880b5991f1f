// Command weft-server exposes the prompt version lifecycle over HTTP.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/weftlabs/weft/audit"
	"github.com/weftlabs/weft/lifecycle"
	"github.com/weftlabs/weft/server"
	"github.com/weftlabs/weft/store"
	"github.com/weftlabs/weft/store/s3blob"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "Listen address")
	backendKind := flag.String("backend", "memory", "Backend: memory, file, postgres, redis, s3")
	dir := flag.String("dir", ".weft", "Data directory when backend=file")
	dsn := flag.String("dsn", "", "PostgreSQL DSN when backend=postgres (or WEFT_DSN env)")
	redisAddr := flag.String("redis", "", "Redis address when backend=redis (e.g. localhost:6379, or WEFT_REDIS env)")
	redisPrefix := flag.String("redis-prefix", "", "Redis key prefix (default: weft)")
	bucket := flag.String("bucket", "", "S3 bucket when backend=s3 (or WEFT_S3_BUCKET env)")
	s3Prefix := flag.String("s3-prefix", "", "S3 key prefix")
	flag.Parse()

	if v := os.Getenv("WEFT_DSN"); v != "" && *dsn == "" {
		*dsn = v
	}
	if v := os.Getenv("WEFT_REDIS"); v != "" && *redisAddr == "" {
		*redisAddr = v
	}
	if v := os.Getenv("WEFT_S3_BUCKET"); v != "" && *bucket == "" {
		*bucket = v
	}

	// The audit trail lands next to the prompts when the backend supports
	// it, otherwise in memory.
	var backend store.Backend
	trail := audit.Store(audit.NewMemoryStore(100000))
	switch *backendKind {
	case "memory":
		backend = store.NewMemoryBackend()
	case "file":
		fb, err := store.NewFileBackend(*dir)
		if err != nil {
			log.Fatalf("file backend: %v", err)
		}
		backend = fb
	case "postgres":
		if *dsn == "" {
			log.Fatal("postgres backend requires -dsn or WEFT_DSN")
		}
		db, err := sql.Open("postgres", *dsn)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		pg, err := store.NewPostgresBackend(db, true)
		if err != nil {
			log.Fatalf("postgres backend: %v", err)
		}
		backend = pg
		if trail, err = audit.NewPostgresStore(db, ""); err != nil {
			log.Fatalf("audit store: %v", err)
		}
	case "redis":
		if *redisAddr == "" {
			log.Fatal("redis backend requires -redis or WEFT_REDIS")
		}
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		backend = store.NewRedisBackend(rdb, *redisPrefix)
		trail = audit.NewRedisStore(rdb, "")
	case "s3":
		if *bucket == "" {
			log.Fatal("s3 backend requires -bucket or WEFT_S3_BUCKET")
		}
		blobs, err := s3blob.NewFromConfig(context.Background(), *bucket, "")
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		backend = store.NewS3Backend(blobs, *s3Prefix)
	default:
		log.Fatalf("unknown backend: %s", *backendKind)
	}

	mgr := lifecycle.NewManager(store.NewLocal(backend))
	mgr.SetAudit(trail)
	srv := server.NewServer(mgr, *addr)
	srv.Audit = trail
	log.Printf("weft server listening on %s (backend=%s)", *addr, *backendKind)
	log.Fatal(srv.ListenAndServe())
}
