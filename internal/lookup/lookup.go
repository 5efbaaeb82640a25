// Package lookup finds order numbers by exact or approximate match.
package lookup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultLimit is the number of matches returned when no limit is given.
const DefaultLimit = 5

// Match is a candidate order number and its edit distance to the query.
type Match struct {
	OrderNo  string `json:"order_no"`
	Distance int    `json:"distance"`
}

// Exact reports whether the match is the queried order number.
func (m Match) Exact() bool { return m.Distance == 0 }

// Closest ranks candidates by case-insensitive edit distance to target.
// Candidates further than a third of the target length (at least 2) are dropped.
func Closest(target string, candidates []string, limit int) []Match {
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	threshold := max(len([]rune(target))/3, 2)

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(target, strings.ToUpper(c))
		if d > threshold {
			continue
		}
		matches = append(matches, Match{OrderNo: c, Distance: d})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OrderNo < matches[j].OrderNo
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// OrderNoLister lists every known order number.
type OrderNoLister interface {
	OrderNos(ctx context.Context) ([]string, error)
}

// Finder looks up order numbers in a repository.
type Finder struct {
	repo  OrderNoLister
	limit int
}

// NewFinder creates a Finder returning at most limit matches.
func NewFinder(repo OrderNoLister, limit int) *Finder {
	return &Finder{repo: repo, limit: limit}
}

// Find returns the closest order numbers to target.
func (f *Finder) Find(ctx context.Context, target string) ([]Match, error) {
	orderNos, err := f.repo.OrderNos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list order numbers: %w", err)
	}
	return Closest(target, orderNos, f.limit), nil
}
