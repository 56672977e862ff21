package adminapi

import (
	"bytes"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/visionmark/visionmark/pkg/common"
)

// decimalInput a money value bound from JSON or form input; empty or null
// leaves it unset.
type decimalInput struct {
	decimal.NullDecimal
}

func newDecimalInput(d decimal.NullDecimal) decimalInput {
	return decimalInput{NullDecimal: d}
}

func (d *decimalInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" || string(b) == `""` {
		d.Valid = false
		return nil
	}
	var v decimal.Decimal
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	d.Decimal, d.Valid = v, true
	return nil
}

func (d *decimalInput) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		d.Valid = false
		return nil
	}
	v, err := decimal.NewFromString(param)
	if err != nil {
		return err
	}
	d.Decimal, d.Valid = v, true
	return nil
}

// parseOptionalTime accepts any common date layout; blank means unset.
func parseOptionalTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid date %q", s)
	}
	return &t, nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// resolveSlug returns the requested slug or one derived from title.
func resolveSlug(slug, title string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return common.Slugify(title)
	}
	return common.Slugify(slug)
}
