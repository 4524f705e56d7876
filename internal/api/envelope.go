package api

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// envelope is the wire shape every backend response arrives in: list
// endpoints carry data plus paging, mutation endpoints carry data only.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Paging *Paging         `json:"paging,omitempty"`
}

// Paging mirrors the backend's cursor paging block on list responses.
type Paging struct {
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
	Cursor  int64 `json:"cursor"`
}

// ListQuery holds the query parameters every paginated list endpoint accepts.
type ListQuery struct {
	Search string
	Size   int
	Cursor int64
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Cursor > 0 {
		v.Set("cursor", strconv.FormatInt(q.Cursor, 10))
	}
	return v
}
