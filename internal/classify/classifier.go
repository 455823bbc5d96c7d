package classify

import "strings"

// Categories is the fixed set a record can land in, before per-source
// fallbacks. Order is the deterministic processing order downstream.
var Categories = []string{
	"national",
	"international",
	"politics",
	"economy",
	"sports",
	"entertainment",
	"technology",
}

// FallbackCategory names the reserved bucket for records no rule matched.
func FallbackCategory(source string) string {
	source = strings.TrimSpace(strings.ToLower(source))
	if source == "" {
		source = "source"
	}
	return source + "-general"
}

type urlRule struct {
	fragment string
	category string
}

// URL fragments are checked before keywords; path segments beat content.
var urlRules = []urlRule{
	{"/sports", "sports"},
	{"/cricket", "sports"},
	{"/football", "sports"},
	{"/international", "international"},
	{"/world", "international"},
	{"/politics", "politics"},
	{"/election", "politics"},
	{"/economy", "economy"},
	{"/business", "economy"},
	{"/market", "economy"},
	{"/entertainment", "entertainment"},
	{"/cinema", "entertainment"},
	{"/lifestyle", "entertainment"},
	{"/technology", "technology"},
	{"/tech", "technology"},
	{"/science", "technology"},
	{"/bangladesh", "national"},
	{"/country", "national"},
	{"/national", "national"},
}

var keywordRules = map[string][]string{
	"sports":        {"cricket", "football", "world cup", "tournament", "match", "goal", "wicket", "olympic"},
	"international": {"united nations", "washington", "beijing", "middle east", "border", "foreign"},
	"politics":      {"parliament", "election", "minister", "party", "vote", "opposition"},
	"economy":       {"inflation", "export", "import", "stock", "bank", "economy", "remittance", "budget"},
	"entertainment": {"film", "movie", "actor", "actress", "song", "drama", "festival"},
	"technology":    {"software", "internet", "smartphone", "startup", "satellite", " ai ", "chip"},
	"national":      {"dhaka", "district", "upazila", "local government", "highway"},
}

// Classifier assigns every record exactly one category. It is a pure lookup
// over static tables, so a single instance is safe for concurrent use.
type Classifier struct{}

// New builds the rule-table classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify resolves a category for one record. It is total: when neither the
// URL table nor the keyword table matches, the source fallback wins.
func (c *Classifier) Classify(source, rawURL, title, content string) string {
	loweredURL := strings.ToLower(rawURL)
	for _, rule := range urlRules {
		if strings.Contains(loweredURL, rule.fragment) {
			return rule.category
		}
	}

	haystack := " " + strings.ToLower(title+" "+content) + " "
	for _, category := range Categories {
		for _, keyword := range keywordRules[category] {
			if strings.Contains(haystack, keyword) {
				return category
			}
		}
	}

	return FallbackCategory(source)
}
