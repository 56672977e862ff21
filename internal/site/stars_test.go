package site

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStarRating(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		full  int
		half  bool
	}{
		{"zero", 0, 0, false},
		{"whole", 4, 4, false},
		{"fraction", 4.3, 4, true},
		{"small fraction", 0.1, 0, true},
		{"max", 5.0, 5, false},
		{"above max", 7.5, 5, false},
		{"negative", -2, 0, false},
		{"numeric string", "3.5", 3, true},
		{"garbage", "five", 0, false},
		{"nil", nil, 0, false},
		{"float32", float32(2.5), 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stars := StarRating(tt.input)
			assert.Len(t, stars, 5)
			full, half := 0, 0
			for _, s := range stars {
				switch s {
				case StarFull:
					full++
				case StarHalf:
					half++
				}
			}
			assert.Equal(t, tt.full, full)
			assert.Equal(t, tt.half, half == 1)
			assert.LessOrEqual(t, half, 1)
		})
	}
}

func TestStarRatingOrder(t *testing.T) {
	assert.Equal(t, []string{StarFull, StarFull, StarFull, StarHalf, StarEmpty}, StarRating(3.7))
	assert.Equal(t, []string{StarEmpty, StarEmpty, StarEmpty, StarEmpty, StarEmpty}, StarRating(""))
}

func TestStarRatingAllSteps(t *testing.T) {
	for i := 0; i <= 50; i++ {
		r := decimal.New(int64(i), -1)
		f, _ := r.Float64()
		stars := StarRating(f)
		assert.Len(t, stars, 5, "rating %s", r)
		full := int(r.IntPart())
		for j := 0; j < full; j++ {
			assert.Equal(t, StarFull, stars[j], "rating %s", r)
		}
		if !r.Equal(r.Truncate(0)) {
			assert.Equal(t, StarHalf, stars[full], "rating %s", r)
		}
	}
}
