package common

import (
	"net/http"
	"strconv"
)

// Cursor pagination defaults
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageParams are cursor-based pagination parameters. The cursor is an opaque
// token minted by the storage layer; an empty cursor means the first page.
type PageParams struct {
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor,omitempty"`
}

// ExtractPageParams extracts pagination parameters from the request query
func ExtractPageParams(r *http.Request) PageParams {
	params := PageParams{Limit: DefaultPageLimit}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > MaxPageLimit {
				l = MaxPageLimit
			}
			params.Limit = l
		}
	}

	params.Cursor = r.URL.Query().Get("cursor")
	return params
}

// Page is one page of results plus the cursor for the next page. NextCursor
// is empty when there are no more results.
type Page struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

// NewPage creates a page envelope
func NewPage(items interface{}, nextCursor string) *Page {
	return &Page{
		Items:      items,
		NextCursor: nextCursor,
	}
}
