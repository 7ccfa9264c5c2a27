// Package main is the Kotae CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/engine"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/router"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/store"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Load .env if present (OPENAI_API_KEY).
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "reindex":
		runReindex()
	case "find-image":
		runFindImage()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// components bundles everything built from config so the subcommands share one
// wiring path. Collaborator lifecycle is owned here, not by the components.
type components struct {
	Engine *engine.Engine
	Config *config.Config
	Logger *zap.Logger
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*components, error) {
	ai, err := llm.NewOpenAI(cfg.OpenAI)
	if err != nil {
		return nil, err
	}

	textStore := store.NewTextStore(cfg.Storage.TextIndexPath)
	imageStore := store.NewImageStore(cfg.Storage.ImageIndexPath)

	var pipelineOpts []indexer.PipelineOption
	var routerOpts []router.RouterOption
	var engineOpts []engine.EngineOption
	if debug {
		pipelineOpts = append(pipelineOpts, indexer.WithLogger(logger))
		routerOpts = append(routerOpts, router.WithLogger(logger))
	}
	engineOpts = append(engineOpts, engine.WithLogger(logger))

	pipeline := indexer.NewPipeline(ai, ai, ai, textStore, imageStore,
		cfg.Storage.KnowledgeDir, cfg.Storage.ImagesDir, cfg.OpenAI.FallbackCaption,
		pipelineOpts...)
	r := router.NewRouter(ai, cfg.Retrieval.Greetings, cfg.Retrieval.TopK,
		cfg.Retrieval.SimThreshold, routerOpts...)
	e := engine.NewEngine(r, ai, ai, pipeline, textStore, imageStore,
		cfg.OpenAI.UnavailableReply, engineOpts...)

	return &components{Engine: e, Config: cfg, Logger: logger}, nil
}

func setup(args []string) *components {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args[1:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath))

	c, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return c
}

func runServer() {
	c := setup(os.Args[1:])
	defer c.Logger.Sync()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Engine.EnsureTextIndex(ctx); err != nil {
		c.Logger.Fatal("Failed to load text index", zap.Error(err))
	}
	c.Logger.Info("text index ready", zap.Int("chunks", c.Engine.TextChunks()))

	watchSvc := watcher.NewWatcher(
		c.Config.Storage.KnowledgeDir,
		[]string{".txt", ".md"},
		func() {
			n, err := c.Engine.Reindex(context.Background())
			if err != nil {
				c.Logger.Warn("reindex after corpus change failed", zap.Error(err))
				return
			}
			c.Logger.Info("reindexed after corpus change", zap.Int("chunks", n))
		},
		watcher.WithLogger(c.Logger),
	)
	if err := watchSvc.Start(ctx); err != nil {
		c.Logger.Warn("knowledge watch unavailable", zap.Error(err))
	} else {
		defer watchSvc.Stop()
	}

	srv := server.NewServer(c.Engine, c.Config, c.Logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		c.Logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		c.Logger.Error("server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		c.Logger.Error("shutdown failed", zap.Error(err))
	}
}

func runAsk() {
	c := setup(os.Args[1:])
	defer c.Logger.Sync()
	query := strings.Join(flagArgs(os.Args[2:]), " ")
	if query == "" {
		fmt.Println("Usage: kotae ask [flags] <query>")
		os.Exit(1)
	}
	ctx := context.Background()
	if err := c.Engine.EnsureTextIndex(ctx); err != nil {
		c.Logger.Fatal("Failed to load text index", zap.Error(err))
	}
	reply, route, err := c.Engine.HandleTextQuery(ctx, query)
	if err != nil {
		c.Logger.Fatal("Query failed", zap.Error(err))
	}
	c.Logger.Debug("query answered", zap.String("route", string(route)))
	fmt.Println(reply)
}

func runReindex() {
	c := setup(os.Args[1:])
	defer c.Logger.Sync()
	n, err := c.Engine.Reindex(context.Background())
	if err != nil {
		c.Logger.Fatal("Reindex failed", zap.Error(err))
	}
	fmt.Printf("Indexed %d chunks from %s\n", n, c.Config.Storage.KnowledgeDir)
}

func runFindImage() {
	c := setup(os.Args[1:])
	defer c.Logger.Sync()
	query := strings.Join(flagArgs(os.Args[2:]), " ")
	if query == "" {
		fmt.Println("Usage: kotae find-image [flags] <query>")
		os.Exit(1)
	}
	match, err := c.Engine.HandleImageQuery(context.Background(), query)
	if err != nil {
		c.Logger.Fatal("Image search failed", zap.Error(err))
	}
	if match == nil {
		fmt.Println("No matching image")
		return
	}
	fmt.Printf("%s\n%s\n", match.StoredPath, match.Caption)
}

func runStatus() {
	c := setup(os.Args[1:])
	defer c.Logger.Sync()
	ctx := context.Background()
	if err := c.Engine.EnsureTextIndex(ctx); err != nil {
		c.Logger.Fatal("Failed to load text index", zap.Error(err))
	}
	images, err := c.Engine.ImageCount()
	if err != nil {
		c.Logger.Fatal("Failed to load image index", zap.Error(err))
	}
	fmt.Printf("Text chunks:  %d (%s)\n", c.Engine.TextChunks(), c.Config.Storage.TextIndexPath)
	fmt.Printf("Image records: %d (%s)\n", images, c.Config.Storage.ImageIndexPath)
	fmt.Printf("Top-K: %d  Similarity threshold: %.2f\n",
		c.Config.Retrieval.TopK, c.Config.Retrieval.SimThreshold)
}

// flagArgs strips leading -flag and -flag=value pairs so subcommands accept
// flags before the positional query.
func flagArgs(args []string) []string {
	out := make([]string, 0, len(args))
	skipNext := false
	for _, a := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && (a == "-config" || a == "--config") {
				skipNext = true
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

func printUsage() {
	fmt.Println(`Kotae - retrieval-augmented answering engine

Usage:
  kotae server     [-config path] [-debug]   Start the HTTP gateway
  kotae ask        [-config path] <query>    Answer one query
  kotae find-image [-config path] <query>    Find the best stored image
  kotae reindex    [-config path]            Rebuild the text index
  kotae status     [-config path]            Show index stats
  kotae version                              Show version`)
}
