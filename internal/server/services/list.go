package services

import (
	"math"
	"sort"
	"strings"

	"github.com/cbsr/biobank/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ListQuery holds the query parameters of the list endpoints.
type ListQuery struct {
	Filter   string
	Status   string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

// normalize applies defaults and rejects out of range values.
func (q ListQuery) normalize(sortFields ...string) (ListQuery, error) {
	if q.Page < 0 || q.PageSize < 0 {
		return q, ruleError("page and pageSize must not be negative")
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		return q, ruleError("pageSize exceeds maximum of %d", maxPageSize)
	}
	if q.Page > math.MaxInt/q.PageSize {
		return q, ruleError("page out of range: %d", q.Page)
	}
	switch q.Order {
	case "":
		q.Order = "asc"
	case "asc", "desc":
	default:
		return q, ruleError("invalid order: %s", q.Order)
	}
	if q.Status == "" {
		q.Status = "all"
	}
	if q.Sort == "" && len(sortFields) > 0 {
		q.Sort = sortFields[0]
	}
	if q.Sort != "" && !contains(sortFields, q.Sort) {
		return q, ruleError("invalid sort field: %s", q.Sort)
	}
	return q, nil
}

// matches reports whether name passes the case insensitive substring filter.
func (q ListQuery) matches(name string) bool {
	return q.Filter == "" || strings.Contains(strings.ToLower(name), strings.ToLower(q.Filter))
}

func (q ListQuery) statusMatches(status string) bool {
	return q.Status == "all" || q.Status == status
}

// sortBy orders items by key, honouring q.Order. The sort is stable so
// equal keys keep their insertion order.
func sortBy[T any](items []T, q ListQuery, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(key(items[i])), strings.ToLower(key(items[j]))
		if q.Order == "desc" {
			return a > b
		}
		return a < b
	})
}

func paginate[T any](items []T, q ListQuery) *domain.PagedResult[T] {
	offset := (q.Page - 1) * q.PageSize
	page := []T{}
	if offset < len(items) {
		end := offset + q.PageSize
		if end > len(items) {
			end = len(items)
		}
		page = items[offset:end]
	}
	return &domain.PagedResult[T]{
		Items:    page,
		Page:     q.Page,
		PageSize: q.PageSize,
		Offset:   offset,
		Total:    len(items),
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
