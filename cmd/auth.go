package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvesely/portfolio/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the studio and hosted content store tokens",
	Long: `Store and manage tokens outside the config file.

Credentials are stored in the XDG config home (portfolio/credentials.json)
and used as a fallback when neither the config file nor the environment
sets a token.`,
}

var authStudioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Create (or rotate) the studio API token",
	RunE:  runAuthStudio,
}

var authCMSCmd = &cobra.Command{
	Use:   "cms",
	Short: "Store the hosted content store read token",
	RunE:  runAuthCMS,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tokens are configured",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [studio|cms]",
	Short: "Remove stored tokens",
	Long: `Remove a stored token.

If no name is given, removes all stored tokens.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogout,
}

func init() {
	authStudioCmd.Flags().Bool("rotate", false, "replace an existing token")
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authStudioCmd)
	authCmd.AddCommand(authCMSCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthStudio(cmd *cobra.Command, args []string) error {
	path := auth.CredentialPath()
	creds, err := auth.Load(path)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	rotate, _ := cmd.Flags().GetBool("rotate")
	if creds.Studio != nil && creds.Studio.Token != "" && !rotate {
		fmt.Println("A studio token is already stored. Use --rotate to replace it.")
		return nil
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	creds.Studio = &auth.TokenCredentials{Token: token, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	if err := auth.Save(path, creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Printf("Studio token stored in %s\n\n  %s\n\n", path, token)
	fmt.Println("Send it as `Authorization: Bearer <token>` (or ?token= for the websocket).")
	return nil
}

func runAuthCMS(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Hosted content store token: ")
	input, _ := reader.ReadString('\n')
	token := strings.TrimSpace(input)
	if token == "" {
		return fmt.Errorf("token is required")
	}

	path := auth.CredentialPath()
	creds, err := auth.Load(path)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	creds.CMS = &auth.TokenCredentials{Token: token, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	if err := auth.Save(path, creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Println("Content store token stored successfully!")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	path := auth.CredentialPath()
	creds, err := auth.Load(path)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	fmt.Printf("Credentials file: %s\n\n", path)
	fmt.Println("Token    Status")
	fmt.Println("-----    ------")
	fmt.Printf("studio   %s\n", tokenStatus(auth.StudioTokenEnv, creds.Studio))
	fmt.Printf("cms      %s\n", tokenStatus(auth.CMSTokenEnv, creds.CMS))
	return nil
}

func tokenStatus(envVar string, stored *auth.TokenCredentials) string {
	switch {
	case os.Getenv(envVar) != "":
		return "configured (env var)"
	case stored != nil && stored.Token != "":
		return "configured (stored " + stored.CreatedAt + ")"
	default:
		return "not configured"
	}
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	path := auth.CredentialPath()
	creds, err := auth.Load(path)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if len(args) == 0 {
		creds = &auth.Credentials{}
		fmt.Println("All stored tokens removed.")
	} else {
		switch args[0] {
		case "studio":
			creds.Studio = nil
			fmt.Println("Studio token removed.")
		case "cms":
			creds.CMS = nil
			fmt.Println("Content store token removed.")
		default:
			return fmt.Errorf("unknown token %q (valid: studio, cms)", args[0])
		}
	}

	return auth.Save(path, creds)
}
