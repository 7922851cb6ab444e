package config

// DefaultUserAgents provides the browser user agent sent to vendor sites
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

const (
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.5"
)

// DefaultSearchPaths are common vendor search endpoints: generic, Amazon-style,
// PHP storefronts and Magento. The encoded query is appended to each.
var DefaultSearchPaths = []string{
	"/search?q=",
	"/s?k=",
	"/search.php?search_query=",
	"/catalogsearch/result/?q=",
}

// DefaultSelectorGroups are the product container guesses, highest priority first
var DefaultSelectorGroups = []string{
	// product cards
	`.product-item, .product, .item, [data-product], .search-result`,
	// list items
	`li[class*="product"], li[class*="item"], li[class*="result"]`,
	// links with product info
	`a[class*="product"], a[href*="product"], a[href*="part"]`,
}
