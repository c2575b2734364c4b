package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

// ListParams holds the parsed list query. Page and PerPage are nil when the
// parameter is absent or not an integer.
type ListParams struct {
	Stanzas []int
	Page    *int
	PerPage *int
}

// ParseListParams reads stanzas (repeatable), page and per_page from q.
// A stanzas value that is not an integer is a validation error.
func ParseListParams(q url.Values) (ListParams, error) {
	var p ListParams
	for _, raw := range q["stanzas"] {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return ListParams{}, errors.ValidationError("Invalid stanzas parameter").
				WithCause(err).
				WithContext("value", raw).
				Build()
		}
		p.Stanzas = append(p.Stanzas, n)
	}
	p.Page = optionalInt(q, "page")
	p.PerPage = optionalInt(q, "per_page")
	return p, nil
}

func optionalInt(q url.Values, name string) *int {
	if !q.Has(name) {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(name)))
	if err != nil {
		return nil
	}
	return &n
}

// paginated reports whether both page and per_page were supplied.
func (p ListParams) paginated() bool {
	return p.Page != nil && p.PerPage != nil
}
