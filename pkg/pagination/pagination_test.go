package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func request(query string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/v1/sales"+query, nil)
}

func TestRequested(t *testing.T) {
	assert.False(t, Requested(request("")))
	assert.False(t, Requested(request("?date=2026-10-16")))
	assert.True(t, Requested(request("?page=2")))
	assert.True(t, Requested(request("?per_page=5")))
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query    string
		wantPage int
		wantPer  int
		wantOff  int
	}{
		{"", 1, 20, 0},
		{"?page=3&per_page=50", 3, 50, 100},
		{"?page=-1", 1, 20, 0},
		{"?page=0", 1, 20, 0},
		{"?page=abc", 1, 20, 0},
		{"?per_page=101", 1, 20, 0},
		{"?per_page=100", 1, 100, 0},
		{"?per_page=0", 1, 20, 0},
		{"?page=2&per_page=10", 2, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := FromRequest(request(tt.query))
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPer, p.PerPage)
			assert.Equal(t, tt.wantOff, p.Offset)
		})
	}
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}

	first := Slice(all, Params{Page: 1, PerPage: 3, Offset: 0})
	assert.Equal(t, []int{1, 2, 3}, first.Items)
	assert.Equal(t, 7, first.TotalCount)
	assert.Equal(t, 3, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	last := Slice(all, Params{Page: 3, PerPage: 3, Offset: 6})
	assert.Equal(t, []int{7}, last.Items)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)

	past := Slice(all, Params{Page: 9, PerPage: 3, Offset: 24})
	assert.Empty(t, past.Items)
	assert.NotNil(t, past.Items)
}

func TestSlice_Empty(t *testing.T) {
	r := Slice([]string(nil), DefaultParams())

	assert.Empty(t, r.Items)
	assert.Equal(t, 0, r.TotalPages)
	assert.False(t, r.HasNext)
}

func TestSlice_DoesNotAliasInput(t *testing.T) {
	all := []int{1, 2, 3}
	r := Slice(all, Params{Page: 1, PerPage: 2})
	r.Items[0] = 99

	assert.Equal(t, 1, all[0])
}
