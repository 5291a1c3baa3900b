package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		pageSize  int
		wantPages int
	}{
		{name: "empty", total: 0, page: 1, pageSize: 20, wantPages: 0},
		{name: "partial last page", total: 45, page: 3, pageSize: 20, wantPages: 3},
		{name: "exact multiple", total: 40, page: 1, pageSize: 20, wantPages: 2},
		{name: "single item", total: 1, page: 1, pageSize: 100, wantPages: 1},
		{name: "page size one", total: 7, page: 2, pageSize: 1, wantPages: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPageResult(nil, tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPages, got.TotalPages)
			assert.Equal(t, tt.total, got.Total)
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.pageSize, got.PageSize)
			assert.NotNil(t, got.Items)
		})
	}
}

func TestListFilterOffset(t *testing.T) {
	assert.Equal(t, 0, ListFilter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, ListFilter{Page: 3, PageSize: 20}.Offset())
}

func TestPageResponseJSONShape(t *testing.T) {
	resp := NewPageResult(nil, 0, 1, 20).ToResponse()
	assert.Equal(t, []ProductPriceResponse{}, resp.Items)
	assert.Equal(t, 0, resp.TotalPages)
}

func TestParseFilterDate(t *testing.T) {
	got, err := ParseFilterDate("2026-05-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseFilterDate("2026-05-01T09:00:00+09:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseFilterDate("2026-05-01T09:30:15")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 30, 15, 0, time.UTC), got)

	got, err = ParseFilterDate("2026-05-01T09:30:15.250")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 30, 15, 250000000, time.UTC), got)

	_, err = ParseFilterDate("05/01/2026")
	assert.Error(t, err)

	_, err = ParseFilterDate("2026-05-01T09:30")
	assert.Error(t, err)
}
