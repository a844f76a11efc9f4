// cmd/api/main.go
// Main entry point for the match engine and realtime delivery service.
// This file bootstraps all components and starts the server.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/common/database"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/config"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/matching"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/messaging"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/platform"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Match Engine API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	log.Println("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed: ", err)
	}
	log.Println("✅ Configuration is valid")

	// 3. Connect to PostgreSQL
	log.Println("🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL, nil)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL")

	// 4. Connect to Redis
	log.Println("📮 Step 4: Connecting to Redis...")
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to Redis: ", err)
	}
	defer redisClient.Close()
	log.Println("✅ Connected to Redis")

	// 5. Run database migrations
	log.Println("🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Shared collaborators
	log.Println("🧩 Step 6: Initializing platform collaborators...")
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	profiles := platform.NewProfileStore(db)
	gate := platform.NewOpenGate()
	feed := platform.NewNotificationFeed(db)
	log.Println("✅ Platform collaborators initialized")

	// 7. Realtime delivery layer
	log.Println("🔌 Step 7: Initializing realtime delivery layer...")
	registry := messaging.NewMemoryRegistry()
	router := messaging.NewRouter()
	presence := messaging.NewPresenceStore(redisClient, cfg.PresenceTTL)
	hub := messaging.NewHub(registry, router, presence)
	log.Println("✅ Realtime delivery layer initialized")

	// 8. Match engine
	log.Println("💘 Step 8: Initializing match engine...")
	matchRepo := matching.NewPostgresRepository(db)
	scorer := matching.NewScorer()

	// The emitter closes the loop between match events and the realtime
	// layer; messaging depends on matching, never the other way around.
	emitter := messaging.NewEventEmitter(hub, feed)
	matchService := matching.NewService(matchRepo, profiles, scorer, gate, emitter, &matching.Options{
		SuggestionLimit:       cfg.SuggestionLimit,
		RejectionCooldownDays: cfg.RejectionCooldownDays,
	})
	matchHandler := matching.NewHandler(matchService)
	log.Println("✅ Match engine initialized")

	// 9. Messaging service
	log.Println("💬 Step 9: Initializing messaging service...")
	messageRepo := messaging.NewPostgresRepository(db)
	messageService := messaging.NewService(messageRepo, matchService, gate, feed, hub)
	messageHandler := messaging.NewHandler(messageService, hub)
	wsHandler := messaging.NewWSHandler(hub, messageService, authMiddleware, cfg.AllowedOrigins)

	// Replay unread messages to every freshly connected user.
	hub.OnConnect(messageService.ReplayUnread)
	log.Println("✅ Messaging service initialized")

	// 10. Routes
	log.Println("🛣️  Step 10: Setting up routes...")
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matching.RegisterRoutes(r, matchHandler, authMiddleware)
	messaging.RegisterRoutes(r, messageHandler, wsHandler, authMiddleware)
	platform.RegisterRoutes(r, platform.NewNotificationHandler(feed), authMiddleware)

	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)
	log.Println("✅ Routes registered")

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost%s (%s)", srv.Addr, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")

	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown: ", err)
	}

	log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%q,"uptime":%q}`,
		time.Now().Format(time.RFC3339), time.Since(startTime).String())
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		// Profiles consumed read-only by the match engine. The profile
		// service owns the writes; the table is created here so the
		// service can run standalone in development.
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id BIGINT PRIMARY KEY,
			display_name VARCHAR(100) NOT NULL DEFAULT '',
			age INTEGER NOT NULL DEFAULT 0,
			gender VARCHAR(30) NOT NULL DEFAULT '',
			gender_preferences TEXT[] NOT NULL DEFAULT '{}',
			preferred_min_age INTEGER NOT NULL DEFAULT 18,
			preferred_max_age INTEGER NOT NULL DEFAULT 100,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			max_distance_km DOUBLE PRECISION,
			beliefs TEXT[] NOT NULL DEFAULT '{}',
			practices TEXT[] NOT NULL DEFAULT '{}',
			healing_stage VARCHAR(30),
			lifestyle_choices TEXT[] NOT NULL DEFAULT '{}',
			activity_level VARCHAR(30),
			intent VARCHAR(50),
			intent_badges TEXT[] NOT NULL DEFAULT '{}',
			life_purpose TEXT,
			is_complete BOOLEAN NOT NULL DEFAULT FALSE,
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			last_active TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,

		// One row per unordered pair: user_a_id < user_b_id always.
		`CREATE TABLE IF NOT EXISTS match_records (
			id BIGSERIAL PRIMARY KEY,
			user_a_id BIGINT NOT NULL,
			user_b_id BIGINT NOT NULL,
			liked_by_a BOOLEAN NOT NULL DEFAULT FALSE,
			liked_by_b BOOLEAN NOT NULL DEFAULT FALSE,
			is_mutual BOOLEAN NOT NULL DEFAULT FALSE,
			score INTEGER,
			labels TEXT[],
			breakdown JSONB,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			unmatched_by BIGINT,
			unmatched_at TIMESTAMP WITH TIME ZONE,
			matched_at TIMESTAMP WITH TIME ZONE,
			last_interaction TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT match_records_pair_order CHECK (user_a_id < user_b_id),
			CONSTRAINT match_records_pair_unique UNIQUE (user_a_id, user_b_id)
		)`,

		`CREATE TABLE IF NOT EXISTS rejection_records (
			id BIGSERIAL PRIMARY KEY,
			actor_id BIGINT NOT NULL,
			target_id BIGINT NOT NULL,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT rejection_records_pair_unique UNIQUE (actor_id, target_id)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			match_id BIGINT NOT NULL REFERENCES match_records(id),
			sender_id BIGINT NOT NULL,
			recipient_id BIGINT NOT NULL,
			content TEXT NOT NULL,
			message_type VARCHAR(20) NOT NULL DEFAULT 'text',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS notification_feed (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			kind VARCHAR(50) NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}',
			dismissed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_user_profiles_last_active ON user_profiles(last_active DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_match_records_user_a ON match_records(user_a_id)`,
		`CREATE INDEX IF NOT EXISTS idx_match_records_user_b ON match_records(user_b_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rejection_records_actor ON rejection_records(actor_id, expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(sender_id, recipient_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(recipient_id, created_at) WHERE is_read = FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_notification_feed_user ON notification_feed(user_id, created_at DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
