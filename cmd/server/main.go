// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/anreszii/matchup/internal/auth"
	"github.com/anreszii/matchup/internal/cache"
	"github.com/anreszii/matchup/internal/chat"
	"github.com/anreszii/matchup/internal/config"
	"github.com/anreszii/matchup/internal/database"
	"github.com/anreszii/matchup/internal/handlers"
	"github.com/anreszii/matchup/internal/matchmaking"
	"github.com/anreszii/matchup/internal/middleware"
	"github.com/anreszii/matchup/internal/voice"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	auth.Init()
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		logger.Fatalf("redis connect failed: %v", err)
	}

	cfg := config.FromEnv()

	hub := handlers.NewHub(logger)
	m := matchmaking.NewManagers(cfg, matchmaking.Deps{
		Log:      logger,
		Profiles: database.NewProfileRepo(database.DB),
		Chat:     chat.NewService(cache.Rdb, logger),
		Voice:    voice.NewClient(os.Getenv("VOICE_API_URL"), os.Getenv("VOICE_API_TOKEN"), logger),
		Notify:   hub,
	})
	m.OnMatchStart = func(record matchmaking.MatchRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.PublishMatchRecord(ctx, record); err != nil {
			logger.WithError(err).Warn("failed to publish match record")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go m.Run(ctx)

	// Mirror the shared counters into redis so other services can read
	// live search/play numbers without calling us.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if err := cache.MirrorCounters(mctx, m.Counters); err != nil {
					logger.WithError(err).Warn("counter mirror failed")
				}
				cancel()
			}
		}
	}()

	srv := handlers.NewServer(m, hub, logger)

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("/ws", logged(srv.WSHandler()))

	mux.Handle("/lobby/create", logged(srv.CreateLobbyHandler()))
	mux.Handle("/lobby/list", logged(srv.ListLobbiesHandler()))
	mux.Handle("/lobby/find", logged(srv.FindLobbyHandler()))
	mux.Handle("/lobby/join", logged(srv.JoinLobbyHandler()))
	mux.Handle("/lobby/leave", logged(srv.LeaveLobbyHandler()))
	mux.Handle("/lobby/ready", logged(srv.ReadyHandler()))
	mux.Handle("/lobby/unready", logged(srv.UnreadyHandler()))
	mux.Handle("/lobby/vote", logged(srv.VoteHandler()))
	mux.Handle("/lobby/move", logged(srv.MoveHandler()))
	mux.Handle("/lobby/start", logged(srv.StartHandler()))
	mux.Handle("/lobby/delete", logged(srv.DeleteLobbyHandler()))

	mux.Handle("/team/create", logged(srv.CreateTeamHandler()))
	mux.Handle("/team/join", logged(srv.JoinTeamHandler()))
	mux.Handle("/team/leave", logged(srv.LeaveTeamHandler()))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	httpSrv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("http shutdown error")
		}
	}()

	logger.Infof("matchup running on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("shutdown complete")
}
