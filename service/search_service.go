package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Yureien/PinocchioBot/models"
)

// searchService implements the SearchService interface
type searchService struct {
	uowFactory UnitOfWorkFactory
}

// NewSearchService creates a new search service
func NewSearchService(uowFactory UnitOfWorkFactory) SearchService {
	return &searchService{
		uowFactory: uowFactory,
	}
}

// Search ranks catalog entries by edit distance to the query, matching
// against both name and series and keeping the better of the two. Numeric
// queries are exact-ID lookups. Ties break on catalog ID so results are
// stable across calls.
func (s *searchService) Search(ctx context.Context, query string, limit int) ([]*models.Waifu, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		waifu, err := uow.WaifuRepository().GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get waifu: %w", err)
		}
		if waifu == nil {
			return nil, nil
		}
		return []*models.Waifu{waifu}, nil
	}

	catalog, err := uow.WaifuRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	needle := strings.ToLower(query)

	type scored struct {
		waifu    *models.Waifu
		distance int
	}
	results := make([]scored, 0, len(catalog))
	for _, w := range catalog {
		d := damerauLevenshtein(needle, strings.ToLower(w.Name))
		if sd := damerauLevenshtein(needle, strings.ToLower(w.FromAnime)); sd < d {
			d = sd
		}
		results = append(results, scored{waifu: w, distance: d})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].distance != results[j].distance {
			return results[i].distance < results[j].distance
		}
		return results[i].waifu.ID < results[j].waifu.ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	waifus := make([]*models.Waifu, 0, len(results))
	for _, r := range results {
		waifus = append(waifus, r.waifu)
	}
	return waifus, nil
}

// damerauLevenshtein computes the optimal string alignment distance between
// two strings, counting insertions, deletions, substitutions and adjacent
// transpositions.
func damerauLevenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := prev2[j-2] + 1; t < curr[j] {
					curr[j] = t
				}
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
