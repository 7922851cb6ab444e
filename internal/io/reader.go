package io

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/williampepple1/partsearch/internal/config"
)

// SiteReader reads vendor site lists
type SiteReader struct {
	Config *config.IOConfig
}

// NewSiteReader creates a new site reader
func NewSiteReader(config *config.IOConfig) *SiteReader {
	return &SiteReader{
		Config: config,
	}
}

// ReadFromFile reads site base URLs from a file, one per line. Blank lines
// and lines starting with # are skipped.
func (r *SiteReader) ReadFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "io: open %s", filename)
	}
	defer file.Close()

	var sites []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		site := strings.TrimSpace(scanner.Text())
		if site != "" && !strings.HasPrefix(site, "#") {
			sites = append(sites, site)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "io: read %s", filename)
	}

	return sites, nil
}

// GetSites returns the sites given explicitly followed by those listed in
// the configured input file, if any
func (r *SiteReader) GetSites(explicit []string) ([]string, error) {
	sites := append([]string(nil), explicit...)
	if r.Config.InputFile == "" {
		return sites, nil
	}

	fromFile, err := r.ReadFromFile(r.Config.InputFile)
	if err != nil {
		return nil, err
	}
	return append(sites, fromFile...), nil
}
