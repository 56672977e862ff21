package paginator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPage(t *testing.T) {
	p := New(20, 6) // 4 pages: 6, 6, 6, 2

	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"1", 1},
		{"3", 3},
		{" 4 ", 4},
		{"5", 4},
		{"999", 4},
		{"0", 4},
		{"-2", 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.GetPage(tt.raw).Number, "page=%q", tt.raw)
	}
}

func TestPageBounds(t *testing.T) {
	p := New(20, 6)

	first := p.GetPage("1")
	assert.Equal(t, 0, first.Offset())
	assert.Equal(t, 6, first.Limit())
	assert.False(t, first.HasPrevious())
	assert.True(t, first.HasNext())
	assert.Equal(t, 2, first.NextNumber())
	assert.EqualValues(t, 1, first.StartIndex())
	assert.EqualValues(t, 6, first.EndIndex())

	last := p.GetPage("4")
	assert.Equal(t, 18, last.Offset())
	assert.False(t, last.HasNext())
	assert.Equal(t, 3, last.PreviousNumber())
	assert.EqualValues(t, 19, last.StartIndex())
	assert.EqualValues(t, 20, last.EndIndex())
	assert.Equal(t, []int{1, 2, 3, 4}, last.PageRange())
}

func TestEmptyResultHasOnePage(t *testing.T) {
	p := New(0, 9)
	pg := p.GetPage("7")
	assert.Equal(t, 1, pg.Number)
	assert.Equal(t, 1, pg.NumPages())
	assert.False(t, pg.HasOtherPages())
	assert.EqualValues(t, 0, pg.StartIndex())
	assert.EqualValues(t, 0, pg.EndIndex())
}

func TestExactMultiple(t *testing.T) {
	assert.Equal(t, 3, New(27, 9).NumPages())
	assert.Equal(t, 1, New(1, 10).NumPages())
	assert.Equal(t, 1, New(5, 0).GetPage("1").Limit())
}
