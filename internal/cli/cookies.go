package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/apartsfinder/afind/internal/auth"
	"github.com/apartsfinder/afind/internal/ui"
)

var (
	importURL    string
	importFormat string
	deleteYes    bool
)

// cookiesCmd represents the cookies command
var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage cookie sessions loaded before searching",
	Long: `Import, list and delete named cookie sessions.

Sites sometimes show a captcha or a reduced page to fresh visitors. Export the
cookies of a regular browser visit and import them here, then pass --session
to find so they are set before the first navigation.

Sessions are stored in your OS keyring, or in ~/.afind/sessions when no keyring
is available.`,
	Example: `  # Import cookies exported by a browser extension
  afind cookies import avito --url https://www.avito.ru < cookies.json

  # Import a curl cookie jar
  afind cookies import avito --url https://www.avito.ru --format netscape < cookies.txt

  # Use them
  afind find --session avito --rooms 1`,
}

var cookiesImportCmd = &cobra.Command{
	Use:   "import <session-name>",
	Short: "Import cookies from stdin",
	Args:  cobra.ExactArgs(1),
	RunE:  runCookiesImport,
}

var cookiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE:  runCookiesList,
}

var cookiesDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE:  runCookiesDelete,
}

func init() {
	rootCmd.AddCommand(cookiesCmd)
	cookiesCmd.AddCommand(cookiesImportCmd)
	cookiesCmd.AddCommand(cookiesListCmd)
	cookiesCmd.AddCommand(cookiesDeleteCmd)

	cookiesImportCmd.Flags().StringVar(&importURL, "url", "", "Website URL for this session (required)")
	cookiesImportCmd.Flags().StringVar(&importFormat, "format", "json", "Import format: json, netscape")
	_ = cookiesImportCmd.MarkFlagRequired("url")

	cookiesDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func sessionStore(cmd *cobra.Command) (*auth.Store, error) {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a.Sessions()
}

// parseCookies decodes cookies from r in the given format
func parseCookies(r io.Reader, format string) ([]auth.Cookie, error) {
	switch format {
	case "json":
		return auth.ParseJSON(r)
	case "netscape":
		return auth.ParseNetscape(r)
	}
	return nil, fmt.Errorf("unsupported format: %s (use: json, netscape)", format)
}

func runCookiesImport(cmd *cobra.Command, args []string) error {
	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}

	cookies, err := parseCookies(cmd.InOrStdin(), importFormat)
	if err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies imported")
	}

	session := auth.NewSession(args[0], importURL, cookies)
	if err := store.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Session '%s' saved", session.Name)))
	fmt.Fprintf(out, "  Cookies: %d\n", len(cookies))
	if !session.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "  Expires: %s\n", session.ExpiresAt.Format(time.RFC1123))
	}
	fmt.Fprintf(out, "\nUse with:\n  afind find --session=%s\n", session.Name)
	return nil
}

func runCookiesList(cmd *cobra.Command, args []string) error {
	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}

	names, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No stored sessions.")
		fmt.Fprintln(out, ui.Info("Create one with: afind cookies import <name> --url <site>"))
		return nil
	}

	for _, name := range names {
		session, err := store.Load(name)
		if err != nil {
			fmt.Fprintf(out, "%s  %s\n", ui.Bold(name), ui.Error(err.Error()))
			continue
		}
		fmt.Fprintf(out, "%s  %s  %d cookies", ui.Bold(name), session.URL, len(session.Cookies))
		if !session.ExpiresAt.IsZero() {
			fmt.Fprintf(out, ", expires in %s", time.Until(session.ExpiresAt).Round(time.Hour))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runCookiesDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()

	if !deleteYes {
		fmt.Fprintf(out, "Delete session '%s'? [y/N]: ", name)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if a := strings.TrimSpace(answer); a != "y" && a != "Y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}
	if err := store.Delete(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Session '%s' deleted", name)))
	return nil
}
