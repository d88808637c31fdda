package services

import "gorm.io/gorm"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// NewPage clamps user supplied paging values
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset of the first row
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Scope applies the page; the zero Page means no limit
func (p Page) Scope() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if p.Size <= 0 {
			return tx
		}
		return tx.Offset(p.Offset()).Limit(p.Size)
	}
}

// TotalPages for total rows
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 || total == 0 {
		return 1
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
