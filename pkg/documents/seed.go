package documents

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

var (
	SeedCategories = []string{"Finance", "Legal", "Marketing", "HR", "Technical"}
	SeedTags       = []string{"Confidential", "Draft", "Final", "Reviewed", "Approved", "Archived", "Important", "Urgent"}
)

const seedWindow = 30 * 24 * time.Hour

// Seed generates n sample documents created within 30 days before now.
// Each tag is kept with probability 0.3 and the result is capped at 1-3 tags,
// so a document can end up with none.
func Seed(n int, rng *rand.Rand, now time.Time) []Document {
	docs := make([]Document, 0, n)
	for i := 0; i < n; i++ {
		category := SeedCategories[rng.IntN(len(SeedCategories))]

		var tags []string
		for _, t := range SeedTags {
			if rng.Float64() > 0.7 {
				tags = append(tags, t)
			}
		}
		if limit := rng.IntN(3) + 1; len(tags) > limit {
			tags = tags[:limit]
		}
		if tags == nil {
			tags = []string{}
		}

		age := time.Duration(rng.Int64N(int64(seedWindow)))
		docs = append(docs, Document{
			ID:           fmt.Sprintf("doc_%d", i+1),
			Text:         fmt.Sprintf("Processed document #%d for %s department with tags: %s", i+1, category, strings.Join(tags, ", ")),
			Category:     category,
			Tags:         tags,
			CreatedAt:    now.Add(-age).Truncate(time.Second),
			OriginalText: fmt.Sprintf("This is the original document #%d for %s department.", i+1, category),
		})
	}
	return docs
}
