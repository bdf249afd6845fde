package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/auth"
	"github.com/jvesely/portfolio/internal/cms"
	"github.com/jvesely/portfolio/internal/config"
	"github.com/jvesely/portfolio/internal/content"
	"github.com/jvesely/portfolio/internal/db"
	"github.com/jvesely/portfolio/internal/progress"
	"github.com/jvesely/portfolio/internal/scroll"
	"github.com/jvesely/portfolio/internal/site"
)

// loadConfig loads the config, resolves stored tokens and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `portfolio init` to create a config file", err)
	}
	credPath := auth.CredentialPath()
	cfg.Studio.Token = auth.StudioToken(credPath, cfg.Studio.Token)
	cfg.CMS.Token = auth.CMSToken(credPath, cfg.CMS.Token)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.Content.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Content.DBPath, err)
	}
	return database, nil
}

func newCMSClient(cfg *config.Config) (*cms.Client, error) {
	return cms.New(cms.Config{
		ProjectID:  cfg.CMS.ProjectID,
		Dataset:    cfg.CMS.Dataset,
		APIVersion: cfg.CMS.APIVersion,
		UseCDN:     cfg.CMS.UseCDN,
		Token:      cfg.CMS.Token,
		Timeout:    cfg.CMS.Timeout,
	}, cms.WithLogger(logger.Named("cms")))
}

// contentSource returns the source the pages read from.
func contentSource(cfg *config.Config, store *content.Store) (content.Source, error) {
	if cfg.Content.Source == config.SourceCMS {
		return newCMSClient(cfg)
	}
	return store, nil
}

func siteConfig(cfg *config.Config) site.Config {
	s := cfg.Site
	return site.Config{
		Title:        s.Title,
		Description:  s.Description,
		URL:          s.URL,
		Brand:        s.Brand,
		Greeting:     s.Greeting,
		Headline:     s.Headline,
		Highlight:    s.Highlight,
		Intro:        s.Intro,
		About:        s.About,
		ContactIntro: s.ContactIntro,
		Email:        s.Email,
		Phone:        s.Phone,
		Location:     s.Location,
		Technologies: s.Technologies,
		Sections:     scroll.DefaultSections,
		ScrollOffset: cfg.Nav.Offset,
		FetchTimeout: cfg.Content.FetchTimeout,
	}
}

// seedStore imports every bundle matched by patterns.
func seedStore(ctx context.Context, store *content.Store, patterns []string, showProgress bool) (content.ImportStats, []string, error) {
	bundle, files, err := content.ReadBundles(patterns)
	if err != nil {
		return content.ImportStats{}, nil, err
	}
	if len(files) == 0 {
		return content.ImportStats{}, nil, nil
	}

	var track content.ProgressFunc
	var reporter progress.Reporter
	if showProgress && bundle.Len() > 0 {
		reporter = progress.NewReporter("Importing content")
		track = progress.Track(reporter)
	}
	stats, err := store.Import(ctx, bundle, track)
	if reporter != nil {
		reporter.Finish()
	}
	if err != nil {
		return stats, files, err
	}
	logger.Info("content imported",
		zap.Int("files", len(files)),
		zap.Int("projects", stats.Projects),
		zap.Int("services", stats.Services),
		zap.Int("testimonials", stats.Testimonials),
		zap.Int("skills", stats.Skills),
	)
	return stats, files, nil
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("opening browser", zap.Error(err))
	}
}
