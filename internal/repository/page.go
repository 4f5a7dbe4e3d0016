package repository

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Page selects a 1-based page of results.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Size() int {
	switch {
	case p.Limit <= 0:
		return DefaultPageSize
	case p.Limit > MaxPageSize:
		return MaxPageSize
	}
	return p.Limit
}

func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size()
}

// TotalPages is the number of pages needed for total rows.
func (p Page) TotalPages(total int64) int {
	size := int64(p.Size())
	return int((total + size - 1) / size)
}
