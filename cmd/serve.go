package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jvesely/portfolio/internal/config"
	"github.com/jvesely/portfolio/internal/content"
	"github.com/jvesely/portfolio/internal/server"
	"github.com/jvesely/portfolio/internal/site"
	"github.com/jvesely/portfolio/internal/studio"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio site",
	Long: `Starts the HTTP server: the landing page, project pages, the contact
form, the public content API and, when enabled, the studio API with its
live preview websocket.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "override server.host")
	serveCmd.Flags().Int("port", 0, "override server.port")
	serveCmd.Flags().Bool("seed", false, "import the seed bundles before serving")
	serveCmd.Flags().Bool("watch", false, "re-import the seed bundles when they change")
	serveCmd.Flags().Bool("open", false, "open browser automatically")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	seed, _ := cmd.Flags().GetBool("seed")
	watch, _ := cmd.Flags().GetBool("watch")
	openInBrowser, _ := cmd.Flags().GetBool("open")

	if watch && cfg.Content.Source != config.SourceLocal {
		return fmt.Errorf("--watch needs content.source local")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The local store also keeps contact form submissions.
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	store := content.NewStore(database)

	if seed || watch {
		if _, _, err := seedStore(ctx, store, cfg.Content.Seed, false); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	src, err := contentSource(cfg, store)
	if err != nil {
		return err
	}

	pages, err := site.New(siteConfig(cfg), src, store, logger.Named("site"))
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowAll:       cfg.Server.CORSAllowAll,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, database, logger.Named("http"))
	pages.RegisterRoutes(srv.Router())

	if cfg.Studio.Enabled {
		hub := studio.NewHub(logger.Named("studio"), nil)
		defer hub.Close()
		if err := studio.RegisterRoutes(srv.Router(), studio.RoutesDeps{
			Store:   store,
			Hub:     hub,
			Token:   cfg.Studio.Token,
			SiteURL: cfg.Site.URL,
			Logger:  logger.Named("studio"),
		}); err != nil {
			return err
		}
	}

	var background []func(context.Context) error
	if watch {
		background = append(background, func(ctx context.Context) error {
			err := content.Watch(ctx, cfg.Content.Seed, content.DefaultDebounce, logger.Named("watch"), func() {
				if _, _, err := seedStore(ctx, store, cfg.Content.Seed, false); err != nil {
					logger.Error("re-importing content", zap.Error(err))
				}
			})
			if err != nil {
				logger.Error("watching content", zap.Error(err))
			}
			return nil
		})
	}

	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
	logger.Info("serving portfolio",
		zap.String("version", Version),
		zap.String("url", url),
		zap.String("source", string(cfg.Content.Source)),
		zap.String("database", database.Path()),
		zap.Bool("studio", cfg.Studio.Enabled),
	)
	if openInBrowser {
		time.AfterFunc(300*time.Millisecond, func() { openBrowser(url) })
	}

	return runWithBackground(ctx, func(ctx context.Context) error {
		return srv.Run(ctx, cfg.Server.ShutdownTimeout)
	}, background...)
}

// runWithBackground runs serve next to the background jobs and returns
// only after every job has exited. Jobs are cancelled when serve returns.
func runWithBackground(ctx context.Context, serve func(context.Context) error, jobs ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	jobCtx, cancelJobs := context.WithCancel(gctx)
	defer cancelJobs()

	for _, job := range jobs {
		g.Go(func() error { return job(jobCtx) })
	}
	g.Go(func() error {
		defer cancelJobs()
		return serve(gctx)
	})
	return g.Wait()
}
