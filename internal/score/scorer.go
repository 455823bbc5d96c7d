package score

import (
	"strings"

	"TrendScanner/internal/domain"
)

// Apply fills in the Frequency of every selected phrase by counting literal
// case-insensitive substring occurrences over title+heading of the records in
// that phrase's category. A phrase absent from its corpus gets a floor of 1,
// never 0: the upstream model may have paraphrased, which is not an error.
// The bucket is only read.
func Apply(selection domain.FinalSelection, bucket domain.Bucket) {
	folded := map[string][]string{}
	for category, records := range bucket {
		texts := make([]string, 0, len(records))
		for _, record := range records {
			texts = append(texts, strings.ToLower(record.Title+" "+record.Heading))
		}
		folded[category] = texts
	}

	for category, phrases := range selection {
		texts := folded[category]
		for i := range phrases {
			phrases[i].Frequency = count(phrases[i].Text, texts)
		}
		selection[category] = phrases
	}
}

func count(phrase string, texts []string) int {
	needle := strings.ToLower(strings.TrimSpace(phrase))
	if needle == "" {
		return 1
	}
	total := 0
	for _, text := range texts {
		total += strings.Count(text, needle)
	}
	if total == 0 {
		return 1
	}
	return total
}
