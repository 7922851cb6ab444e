package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/partsearch/pkg/models"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvHeader = []string{"title", "url", "description", "source"}

// ResultWriter writes search results in the configured format
type ResultWriter struct {
	Format string
}

// NewResultWriter creates a new result writer
func NewResultWriter(format string) *ResultWriter {
	if format == "" {
		format = FormatJSON
	}
	return &ResultWriter{
		Format: format,
	}
}

// SaveToFile writes the response to filename. "-" writes to stdout.
func (w *ResultWriter) SaveToFile(filename string, resp *models.SearchResponse) error {
	if filename == "-" {
		return w.Write(os.Stdout, resp)
	}

	file, err := os.Create(filename)
	if err != nil {
		return eris.Wrapf(err, "io: create %s", filename)
	}
	if err := w.Write(file, resp); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return eris.Wrapf(err, "io: close %s", filename)
	}
	return nil
}

// Write encodes the response to out
func (w *ResultWriter) Write(out io.Writer, resp *models.SearchResponse) error {
	switch w.Format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return eris.Wrap(err, "io: encode json")
		}
		return nil

	case FormatCSV:
		cw := csv.NewWriter(out)
		if err := cw.Write(csvHeader); err != nil {
			return eris.Wrap(err, "io: write csv header")
		}
		for _, r := range resp.Results {
			if err := cw.Write([]string{r.Title, r.URL, r.Description, r.Source}); err != nil {
				return eris.Wrap(err, "io: write csv row")
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return eris.Wrap(err, "io: flush csv")
		}
		return nil

	default:
		return eris.Errorf("io: unsupported output format %q", w.Format)
	}
}
