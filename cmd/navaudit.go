package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jvesely/portfolio/internal/navaudit"
	"github.com/jvesely/portfolio/internal/scroll"
)

var navauditCmd = &cobra.Command{
	Use:   "navaudit",
	Short: "Check section highlighting and anchor navigation in a real browser",
	Long: `Opens the running site in headless Chrome, scrolls through the landing
page and compares the highlighted navigation entry with the section the
tracker resolves, then clicks every navigation link and checks where the
page lands. With --follow it instead prints the active section while you
scroll a visible browser window.`,
	RunE: runNavaudit,
}

func init() {
	navauditCmd.Flags().String("url", "", "page to audit (defaults to the configured server address)")
	navauditCmd.Flags().String("remote", "", "DevTools websocket URL of a running Chrome")
	navauditCmd.Flags().String("chrome", "", "Chrome binary to launch")
	navauditCmd.Flags().Float64("step", 120, "scroll distance between samples, in pixels")
	navauditCmd.Flags().Int("width", 1280, "viewport width")
	navauditCmd.Flags().Int("height", 800, "viewport height")
	navauditCmd.Flags().Bool("follow", false, "print the active section on live scroll events until interrupted")
	navauditCmd.Flags().Bool("json", false, "print the report as JSON")
	rootCmd.AddCommand(navauditCmd)
}

func runNavaudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pageURL, _ := cmd.Flags().GetString("url")
	if pageURL == "" {
		host := cfg.Server.Host
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		pageURL = fmt.Sprintf("http://%s:%d/", host, cfg.Server.Port)
	}
	remote, _ := cmd.Flags().GetString("remote")
	bin, _ := cmd.Flags().GetString("chrome")
	step, _ := cmd.Flags().GetFloat64("step")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	follow, _ := cmd.Flags().GetBool("follow")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	browser, err := navaudit.Launch(ctx, navaudit.BrowserConfig{
		RemoteURL: remote,
		Bin:       bin,
		Headless:  !follow,
		Width:     width,
		Height:    height,
		Logger:    logger.Named("browser"),
	})
	if err != nil {
		return err
	}
	defer browser.Close()

	page, err := browser.Open(ctx, pageURL)
	if err != nil {
		return err
	}
	defer page.Close()

	opts := navaudit.Options{
		Sections: scroll.DefaultSections,
		Offset:   cfg.Nav.Offset,
		Step:     step,
		Logger:   logger.Named("navaudit"),
	}

	if follow {
		fmt.Printf("Following %s, press Ctrl+C to stop\n", page.URL())
		return navaudit.Follow(ctx, page, page, opts, func(id string, y float64) {
			fmt.Printf("%6.0f  #%s\n", y, id)
		})
	}

	report, err := navaudit.Audit(ctx, page, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(page.URL(), report)
	}
	if !report.OK() {
		return errors.New("navigation audit failed")
	}
	return nil
}

func printReport(pageURL string, r *navaudit.Report) {
	fmt.Printf("Audited %s (%d scroll positions)\n\n", pageURL, r.Samples)
	for _, d := range r.Drift {
		fmt.Printf("config drift: %s\n", d)
	}
	for _, m := range r.Mismatches {
		fmt.Printf("scrollY %6.0f: page highlights #%s, expected #%s\n", m.ScrollY, m.Got, m.Want)
	}

	fmt.Println("\nSection       Target  Landed  Status")
	fmt.Println("-------       ------  ------  ------")
	for _, c := range r.Nav {
		status := "ok"
		if !c.OK() {
			status = c.Problem
		}
		fmt.Printf("%-12s  %6.0f  %6.0f  %s\n", c.Section, c.Target, c.Landed, status)
	}
}
