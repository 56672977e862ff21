// Package paginator slices ordered result sets into fixed-size pages.
//
// GetPage is forgiving: a non-numeric page selects the first page and an
// out-of-range page (including zero or negative numbers) selects the last,
// so list views never fail because of a stale or hand-edited ?page= value.
package paginator

import (
	"strconv"
	"strings"
)

type Paginator struct {
	Count   int64
	PerPage int
}

func New(count int64, perPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages always reports at least one page, even for an empty result.
func (p *Paginator) NumPages() int {
	if p.Count <= 0 {
		return 1
	}
	return int((p.Count + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// GetPage resolves a raw query value into a valid page.
func (p *Paginator) GetPage(raw string) Page {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > p.NumPages():
		number = p.NumPages()
	}
	return p.Page(number)
}

// Page returns page number n; callers must pass a valid number.
func (p *Paginator) Page(n int) Page {
	return Page{Number: n, paginator: p}
}

type Page struct {
	Number    int
	paginator *Paginator
}

func (pg Page) NumPages() int { return pg.paginator.NumPages() }

func (pg Page) Count() int64 { return pg.paginator.Count }

func (pg Page) Offset() int { return (pg.Number - 1) * pg.paginator.PerPage }

func (pg Page) Limit() int { return pg.paginator.PerPage }

func (pg Page) HasNext() bool { return pg.Number < pg.NumPages() }

func (pg Page) HasPrevious() bool { return pg.Number > 1 }

func (pg Page) HasOtherPages() bool { return pg.HasNext() || pg.HasPrevious() }

func (pg Page) NextNumber() int {
	if !pg.HasNext() {
		return pg.Number
	}
	return pg.Number + 1
}

func (pg Page) PreviousNumber() int {
	if !pg.HasPrevious() {
		return pg.Number
	}
	return pg.Number - 1
}

// StartIndex is the 1-based index of the first item on the page.
func (pg Page) StartIndex() int64 {
	if pg.paginator.Count == 0 {
		return 0
	}
	return int64(pg.Offset()) + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (pg Page) EndIndex() int64 {
	if pg.Number == pg.NumPages() {
		return pg.paginator.Count
	}
	return int64(pg.Number * pg.paginator.PerPage)
}

func (pg Page) PageRange() []int {
	n := pg.NumPages()
	r := make([]int, n)
	for i := range r {
		r[i] = i + 1
	}
	return r
}
