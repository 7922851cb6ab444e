package models

// SearchRequest is the payload accepted by the search endpoint and CLI
type SearchRequest struct {
	PartName   string   `json:"partName"`
	PartNumber string   `json:"partNumber"`
	Websites   []string `json:"websites"`
}

// Query joins the non-empty search terms with a single space
func (r SearchRequest) Query() string {
	return JoinTerms(r.PartName, r.PartNumber)
}

// SearchResult represents one product-like match scraped from a vendor site
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// SearchResponse is the aggregated, de-duplicated answer to a SearchRequest
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// ErrorResponse is returned by the API on client and server errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// JoinTerms joins the non-empty terms with a single space
func JoinTerms(terms ...string) string {
	out := ""
	for _, t := range terms {
		if t == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += t
	}
	return out
}
