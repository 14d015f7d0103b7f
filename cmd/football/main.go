package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uset82/My-Football-Game/internal/client"
	"github.com/uset82/My-Football-Game/internal/config"
	"github.com/uset82/My-Football-Game/internal/game"
	"github.com/uset82/My-Football-Game/internal/netsync"
)

const appName = "my-football-game"

func main() {
	query := flag.String("query", "", "launch query string, e.g. ws=wss://host/ws&room=finals")
	mode := flag.String("mode", "solo", "solo or online")
	difficulty := flag.String("difficulty", "medium", "easy, medium or hard")
	seed := flag.Int64("seed", time.Now().UnixNano(), "simulation random seed")
	frames := flag.Int("frames", 0, "stop after this many frames (0 runs to full time)")
	timeLeft := flag.Int("time", 0, "match length in seconds (0 uses the difficulty default)")
	verbose := flag.Bool("v", false, "log every simulation event")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	config.LoadEnv()

	if err := run(*query, *mode, *difficulty, *seed, *frames, *timeLeft); err != nil {
		slog.Error("football exited", "err", err)
		os.Exit(1)
	}
}

func run(query, mode, difficulty string, seed int64, frames, timeLeft int) error {
	d, err := game.ParseDifficulty(difficulty)
	if err != nil {
		return err
	}
	q, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return err
	}

	cfg := client.DefaultConfig()
	cfg.Difficulty = d
	cfg.TimeLeft = timeLeft
	cfg.MaxFrames = frames

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := game.NewSimulator(seed)
	render := client.NewLogRenderer(slog.Default(), 60)

	switch mode {
	case "solo":
		cfg.Mode = game.ModeSolo
		return client.NewRunner(cfg, sim, nil, "", client.Autopilot{}, render).Run(ctx)
	case "online", "networked":
		cfg.Mode = game.ModeNetworked
	default:
		return errors.New("unknown mode " + mode)
	}

	room := config.ResolveRoom(q)
	var cache config.Cache
	if c, err := config.OpenGDataCache(appName); err != nil {
		slog.Warn("endpoint cache unavailable", "err", err)
	} else {
		cache = c
	}
	endpoint, err := config.ResolveEndpoint(q.Get("ws"), os.Getenv("WS_URL"), cache)
	if err != nil {
		slog.Warn("no relay endpoint; pass -query ws=... or set WS_URL", "err", err)
	}

	conn := netsync.NewClient(endpoint, room)
	runner := client.NewRunner(cfg, sim, conn, room, client.Autopilot{}, render)

	g, gctx := errgroup.WithContext(ctx)
	sessionCtx, endSession := context.WithCancel(gctx)
	g.Go(func() error {
		// Connection problems are shown as status; they never end the match loop.
		if err := conn.Run(sessionCtx); err != nil {
			slog.Warn("relay session ended", "err", err)
		}
		return nil
	})
	g.Go(func() error {
		defer endSession()
		return runner.Run(gctx)
	})
	return g.Wait()
}
