package models

import "time"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListFilter selects a page of product prices. Page and PageSize are
// validated by the caller.
type ListFilter struct {
	Page        int
	PageSize    int
	ProductName string
	// StartDate and EndDate bound extracted_at as [StartDate, EndDate).
	StartDate *time.Time
	EndDate   *time.Time
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type PageResult struct {
	Items      []*ProductPrice
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// NewPageResult computes TotalPages as ceil(total/pageSize), 0 when total is 0.
func NewPageResult(items []*ProductPrice, total int64, page, pageSize int) *PageResult {
	if items == nil {
		items = []*ProductPrice{}
	}
	totalPages := 0
	if total > 0 && pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PageResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

type PageResponse struct {
	Items      []ProductPriceResponse `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

func (p *PageResult) ToResponse() PageResponse {
	return PageResponse{
		Items:      ToResponses(p.Items),
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// Layouts without a zone are read as UTC.
var filterDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

// ParseFilterDate parses an RFC 3339 timestamp, a zoneless YYYY-MM-DDTHH:MM:SS
// timestamp or a YYYY-MM-DD date (UTC midnight).
func ParseFilterDate(s string) (time.Time, error) {
	var err error
	for _, layout := range filterDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
