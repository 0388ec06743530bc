package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/joergoster/Smallbrain/internal/board"
	"github.com/joergoster/Smallbrain/internal/config"
	"github.com/joergoster/Smallbrain/internal/eval"
	"github.com/joergoster/Smallbrain/internal/search"
	"github.com/joergoster/Smallbrain/internal/server"
	"github.com/joergoster/Smallbrain/internal/tablebase"
	"github.com/joergoster/Smallbrain/internal/threads"
	"github.com/joergoster/Smallbrain/internal/timeman"
	"github.com/joergoster/Smallbrain/internal/tt"
)

func main() {
	configPath := flag.String("config", getenv("ENGINE_CONFIG", ""), "path to a JSON config file")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	fen := flag.String("fen", "", "search this position once and exit (\"startpos\" for the initial position)")
	depth := flag.Int("depth", 0, "depth limit for -fen")
	moveTime := flag.Duration("movetime", 0, "time limit for -fen")
	workers := flag.Int("threads", 0, "worker count, overrides the config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config")
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *workers > 0 {
		cfg.Threads = *workers
	}
	cfg.HashMB = getenvInt("ENGINE_HASH_MB", cfg.HashMB)
	cfg = cfg.Normalize()
	config.SetConfig(cfg)
	zerolog.SetGlobalLevel(cfg.Level())

	if *fen != "" {
		if err := searchOnce(cfg, *fen, *depth, *moveTime); err != nil {
			log.Fatal().Err(err).Msg("search")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.New(cfg).Run(ctx, cfg.ListenAddr); err != nil {
		log.Error().Err(err).Msg("exiting after server error")
		os.Exit(1)
	}
}

// searchOnce prints info lines and the best move for one position.
func searchOnce(cfg config.Config, fen string, depth int, moveTime time.Duration) error {
	pos, err := board.NewChess(fen)
	if err != nil {
		return err
	}
	manager := threads.NewManager(tt.New(cfg.HashMB), pos, threads.Config{
		Evaluator: eval.NewMaterial(cfg.Eval),
		Prober:    tablebase.TrivialDraw{},
		Overhead:  time.Duration(cfg.MoveOverheadMs) * time.Millisecond,
		OnInfo: func(info search.Info) {
			fmt.Println(info.String())
		},
	})
	if depth <= 0 && moveTime <= 0 {
		depth = cfg.DefaultDepth
	}
	manager.Begin(depth, timeman.Limits{MoveTime: moveTime}, cfg.Threads)
	result := manager.Wait()
	fmt.Printf("bestmove %s\n", result.BestMove)
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
