package models

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PaginatedResponse struct {
	Data       any `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func NewPaginatedResponse(data any, total, page, size int) *PaginatedResponse {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}

	return &PaginatedResponse{Data: data, Total: total, Page: page, PageSize: size, TotalPages: pages}
}

// NormalizePage clamps page to >= 1 and size to [1, MaxPageSize], defaulting size.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = DefaultPageSize
	}

	if size > MaxPageSize {
		size = MaxPageSize
	}

	return page, size
}
