package site

import (
	"math"

	"github.com/spf13/cast"
)

// Font Awesome classes used by the rating widgets
const (
	StarFull  = "fas fa-star"
	StarHalf  = "fas fa-star-half-stroke"
	StarEmpty = "far fa-star"
)

// StarRating turns a rating into exactly five star classes. 4.3 renders as
// four full stars and a half star. Values are clamped to [0,5] and anything
// that is not a number counts as 0.
func StarRating(value interface{}) []string {
	rating, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(rating) {
		rating = 0
	}
	rating = math.Max(0, math.Min(5, rating))

	stars := make([]string, 0, 5)
	full := int(rating)
	for i := 0; i < full; i++ {
		stars = append(stars, StarFull)
	}
	if rating-float64(full) > 0 && full < 5 {
		stars = append(stars, StarHalf)
	}
	for len(stars) < 5 {
		stars = append(stars, StarEmpty)
	}
	return stars
}
