package models

// PaginationOptions is what a caller asks for. Sites without modeled
// server-side paging accept and ignore it.
type PaginationOptions struct {
	PageIndex int `json:"page_index"`
	PageSize  int `json:"page_size"`
}

type PagedResult[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"total_count"`
	PageSize   int `json:"page_size"`
	PageIndex  int `json:"page_index"`
	PageCount  int `json:"page_count"`
}

// SinglePage wraps an extracted set as the one and only page of a result.
func SinglePage[T any](data []T) *PagedResult[T] {
	return NewPagedResultBuilder[T]().
		WithData(data).
		WithPaging(len(data), len(data), 0).
		Build()
}
