package dto

// Page sizes for list endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// PageRequest is the offset/limit window of a list request.
type PageRequest struct {
	Limit  int `form:"limit"  validate:"omitempty,min=1,max=500"`
	Offset int `form:"offset" validate:"omitempty,min=0"`
}

// EffectiveLimit returns Limit, or DefaultLimit when unset.
func (p PageRequest) EffectiveLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// PageInfo describes the window actually returned.
type PageInfo struct {
	Total  int  `json:"total"`
	Offset int  `json:"offset"`
	Limit  int  `json:"limit"`
	More   bool `json:"hasMore"`
}

// Paginate slices items to the requested window.
func Paginate[T any](items []T, req PageRequest) ([]T, PageInfo) {
	limit := req.EffectiveLimit()
	offset := max(req.Offset, 0)
	total := len(items)

	info := PageInfo{Total: total, Offset: offset, Limit: limit}

	if offset >= total {
		return []T{}, info
	}

	end := min(offset+limit, total)
	info.More = end < total

	return items[offset:end], info
}
