// Package reference loads the list of known misinformation domains.
package reference

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/fetcher"
)

// DomainColumn is the header of the column holding domain names.
const DomainColumn = "Domain"

// ErrUnavailable is returned when the reference source does not exist.
var ErrUnavailable = errors.New("reference: domain list unavailable")

// Set is an immutable set of lowercase domain names.
type Set struct {
	domains map[string]struct{}
}

// NewSet builds a Set from raw values. Values are trimmed and lowercased;
// blanks are skipped.
func NewSet(values ...string) *Set {
	s := &Set{domains: make(map[string]struct{}, len(values))}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		s.domains[v] = struct{}{}
	}
	return s
}

// Contains reports whether domain (compared lowercase) is in the set.
func (s *Set) Contains(domain string) bool {
	if s == nil {
		return false
	}
	_, ok := s.domains[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// Len returns the number of domains.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.domains)
}

// sorted returns the domains in order.
func (s *Set) sorted() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.domains))
	for d := range s.domains {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Load reads the reference list from src, a local TSV/CSV/XLSX path or an
// http(s) URL fetched with f. A missing local file returns an error wrapping
// ErrUnavailable.
func Load(ctx context.Context, f fetcher.Fetcher, src string) (*Set, error) {
	if strings.TrimSpace(src) == "" {
		return nil, eris.Wrap(ErrUnavailable, "reference: no source configured")
	}

	tbl, err := fetcher.OpenTable(ctx, f, src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(ErrUnavailable, "reference: %s", src)
		}
		return nil, eris.Wrapf(err, "reference: load %s", src)
	}

	values, ok := tbl.Column(DomainColumn)
	if !ok {
		return nil, eris.Errorf("reference: %s has no %q column", src, DomainColumn)
	}

	set := NewSet(values...)
	zap.L().Info("loaded misinformation domain reference",
		zap.String("source", src),
		zap.Int("domains", set.Len()),
	)
	return set, nil
}
