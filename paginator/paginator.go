// Package paginator splits a counted result set into numbered pages.
package paginator

import "strconv"

const DefaultPerPage = 10

type Page struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

// New resolves raw (usually the "page" query parameter) against count
// items. Anything that is not a number yields the first page, numbers out
// of range yield the last one. There is always at least one page.
func New(count, perPage int, raw string) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}
	numPages := (count + perPage - 1) / perPage
	if numPages == 0 {
		numPages = 1
	}

	p := Page{Number: 1, NumPages: numPages, Count: count, PerPage: perPage}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return p
	}
	if n < 1 || n > numPages {
		n = numPages
	}
	p.Number = n
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) NextNumber() int {
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	return p.Number - 1
}

func (p Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page) Range() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}
