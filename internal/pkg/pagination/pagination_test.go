package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClampsValues(t *testing.T) {
	p := New(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = New(-5, 1000)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)

	p = New(3, 25)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 50, p.Offset)
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(New(2, 10), 35)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 10, meta.Limit)
	assert.EqualValues(t, 35, meta.Total)
	assert.Equal(t, 4, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestGetMetaBoundaries(t *testing.T) {
	// Exact multiple: no partial page
	meta := GetMeta(New(3, 10), 30)
	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	// Empty result set
	meta = GetMeta(New(1, 10), 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b"}
	resp := NewResponse(data, New(1, 10), 2)

	assert.Equal(t, data, resp.Data)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}
