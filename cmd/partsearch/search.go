package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	partio "github.com/williampepple1/partsearch/internal/io"
	"github.com/williampepple1/partsearch/pkg/models"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-off part search from the command line",
	Long:  "Searches the given vendor sites once, prints the matches and writes them to the output file as JSON or CSV.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		name, _ := cmd.Flags().GetString("name")
		number, _ := cmd.Flags().GetString("number")
		explicit, _ := cmd.Flags().GetStringSlice("site")
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		if input != "" {
			cfg.IO.InputFile = input
		}
		if output != "" {
			cfg.IO.OutputFile = output
		}
		if format != "" {
			cfg.IO.OutputFormat = format
		}

		sites, err := partio.NewSiteReader(&cfg.IO).GetSites(explicit)
		if err != nil {
			return eris.Wrap(err, "search: read sites")
		}

		dispatcher, err := newDispatcher(cfg)
		if err != nil {
			return err
		}

		resp, err := dispatcher.Search(ctx, models.SearchRequest{
			PartName:   name,
			PartNumber: number,
			Websites:   sites,
		})
		if err != nil {
			return eris.Wrap(err, "search")
		}

		formatResults(tableOutput(cfg.IO.OutputFile, os.Stdout, os.Stderr), resp.Results)

		if err := partio.NewResultWriter(cfg.IO.OutputFormat).SaveToFile(cfg.IO.OutputFile, resp); err != nil {
			return eris.Wrap(err, "search: save results")
		}
		fmt.Fprintf(os.Stderr, "%d results saved to %s\n", resp.Count, cfg.IO.OutputFile)
		return nil
	},
}

// tableOutput keeps stdout clean for the result file when it is written there
func tableOutput(outputFile string, stdout, stderr io.Writer) io.Writer {
	if outputFile == "-" {
		return stderr
	}
	return stdout
}

func formatResults(out io.Writer, results []models.SearchResult) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(out, "No results found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tTITLE\tURL")
	_, _ = fmt.Fprintln(w, "------\t-----\t---")

	for _, r := range results {
		title := r.Title
		if len([]rune(title)) > 60 {
			title = string([]rune(title)[:57]) + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Source, title, r.URL)
	}

	_ = w.Flush()
}

func init() {
	searchCmd.Flags().String("name", "", "part name to search for")
	searchCmd.Flags().String("number", "", "part number to search for")
	searchCmd.Flags().StringSlice("site", nil, "vendor site base URL (repeatable)")
	searchCmd.Flags().String("input", "", "file listing vendor sites, one per line")
	searchCmd.Flags().String("output", "", "file to write results to, - for stdout (default from config)")
	searchCmd.Flags().String("format", "", "output format: json or csv (default from config)")
	rootCmd.AddCommand(searchCmd)
}
