package domain

import (
	"net/url"
	"strconv"
)

// PagedResult is one page of a server list call.
type PagedResult[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Offset   int `json:"offset"`
	Total    int `json:"total"`
}

// ListOptions are the query parameters the list endpoints understand.
// Zero values are left out of the query.
type ListOptions struct {
	Filter   string
	Status   string
	Sort     string
	Page     int
	PageSize int
	Order    string
}

// Params validates the options and renders them as query parameters.
func (o ListOptions) Params() (url.Values, error) {
	params := url.Values{}
	if o.Filter != "" {
		params.Set("filter", o.Filter)
	}
	if o.Status != "" {
		params.Set("status", o.Status)
	}
	if o.Sort != "" {
		params.Set("sort", o.Sort)
	}
	if o.Page < 0 || o.PageSize < 0 {
		return nil, NewDomainError("page and pageSize must not be negative")
	}
	if o.Page > 0 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	switch o.Order {
	case "":
	case "asc", "desc":
		params.Set("order", o.Order)
	default:
		return nil, NewDomainError("invalid order: %s", o.Order)
	}
	return params, nil
}
