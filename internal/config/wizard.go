package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to portfolio! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Owner.
	brand, err := (&promptui.Prompt{
		Label:    "Your name (shown in the header)",
		Default:  cfg.Site.Brand,
		Validate: requiredString,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	cfg.Site.Brand = brand
	cfg.Site.Title = "Portfolio " + brand

	email, err := (&promptui.Prompt{
		Label:    "Contact e-mail (blank to hide)",
		Validate: optionalEmail,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("e-mail: %w", err)
	}
	cfg.Site.Email = strings.TrimSpace(email)

	// 2. Public URL.
	siteURL, err := (&promptui.Prompt{
		Label:    "Public site URL",
		Default:  cfg.Site.URL,
		Validate: absoluteURL,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("site url: %w", err)
	}
	cfg.Site.URL = strings.TrimRight(siteURL, "/")

	// 3. Technologies in the hero card.
	tech, err := (&promptui.Prompt{
		Label:   "Technologies (comma-separated)",
		Default: strings.Join(cfg.Site.Technologies, ", "),
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("technologies: %w", err)
	}
	cfg.Site.Technologies = splitAndTrim(tech)

	// 4. Content source.
	sourcePrompt := promptui.Select{
		Label: "Where does the content live?",
		Items: []string{
			"local — SQLite store, seeded from YAML and edited via the studio API",
			"cms   — hosted content store, read through its query API",
		},
	}
	idx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content source: %w", err)
	}
	cfg.Content.Source = []ContentSource{SourceLocal, SourceCMS}[idx]

	if cfg.Content.Source == SourceCMS {
		projectID, err := (&promptui.Prompt{
			Label:    "CMS project ID",
			Validate: requiredString,
		}).Run()
		if err != nil {
			return nil, fmt.Errorf("cms project id: %w", err)
		}
		cfg.CMS.ProjectID = strings.TrimSpace(projectID)

		dataset, err := (&promptui.Prompt{Label: "CMS dataset", Default: cfg.CMS.Dataset}).Run()
		if err != nil {
			return nil, fmt.Errorf("cms dataset: %w", err)
		}
		cfg.CMS.Dataset = dataset
	} else {
		enable := promptui.Prompt{Label: "Enable the studio authoring API", IsConfirm: true}
		if _, err := enable.Run(); err == nil {
			cfg.Studio.Enabled = true
		} else if !errors.Is(err, promptui.ErrAbort) {
			return nil, fmt.Errorf("studio: %w", err)
		}
	}

	// 5. Port.
	port, err := (&promptui.Prompt{
		Label:    "Port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validPort,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(port)

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)
	if cfg.Studio.Enabled {
		fmt.Println("Run `portfolio auth studio` to create the studio token.")
	}
	return cfg, nil
}

func requiredString(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func optionalEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("not a valid e-mail address")
	}
	return nil
}

func absoluteURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func validPort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("must be a number between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
