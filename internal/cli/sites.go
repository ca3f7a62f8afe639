package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apartsfinder/afind/internal/site"
	"github.com/apartsfinder/afind/internal/ui"
	"github.com/apartsfinder/afind/pkg/models"
)

var sitesVerbose bool

// sitesCmd lists the sites afind can search
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the sites that can be searched",
	Example: `  # Names and addresses
  afind sites

  # Include every locator
  afind sites --locators --sites-file mirrors.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		out := cmd.OutOrStdout()
		for _, name := range a.SiteNames() {
			s, err := a.Site(name)
			if err != nil {
				return err
			}
			printSite(out, s, sitesVerbose)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.Flags().BoolVar(&sitesVerbose, "locators", false, "Show every locator of each site")
}

func printSite(out io.Writer, s site.Site, locators bool) {
	fmt.Fprintf(out, "%s  %s\n", ui.Bold(s.Name()), s.BaseURL())
	if !locators {
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  listings\t%s\n", s.ListingContainer())
	for _, f := range models.ExtractedFields {
		loc := s.Field(f)
		if loc.Attribute != "" {
			fmt.Fprintf(tw, "  %s\t%s @%s\n", f, loc.Locator, loc.Attribute)
		} else {
			fmt.Fprintf(tw, "  %s\t%s\n", f, loc.Locator)
		}
	}
	fmt.Fprintf(tw, "  category\t%s\n", s.Category())
	for _, n := range s.RoomCounts() {
		loc, _ := s.Room(n)
		fmt.Fprintf(tw, "  rooms %d\t%s\n", n, loc)
	}
	lower, upper := s.PriceBounds()
	fmt.Fprintf(tw, "  price from\t%s\n", lower)
	fmt.Fprintf(tw, "  price to\t%s\n", upper)
	fmt.Fprintf(tw, "  apply\t%s\n", s.ApplyButton())
	tw.Flush()
}
