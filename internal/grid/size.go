package grid

import "mockingbird/internal/domain"

const (
	DefaultRows = 8
	DefaultCols = 8
)

// DefaultSize is the grid every new design starts with.
func DefaultSize() domain.GridSize {
	return domain.GridSize{Rows: DefaultRows, Cols: DefaultCols}
}

// WithRows sets the row count. Existing components are never clamped or
// evicted when the grid shrinks.
func WithRows(size domain.GridSize, rows int) (domain.GridSize, error) {
	if rows < 1 {
		return size, ErrInvalidSize
	}
	size.Rows = rows
	return size, nil
}

// WithCols sets the column count.
func WithCols(size domain.GridSize, cols int) (domain.GridSize, error) {
	if cols < 1 {
		return size, ErrInvalidSize
	}
	size.Cols = cols
	return size, nil
}

func AddRow(size domain.GridSize) domain.GridSize {
	size.Rows++
	return size
}

// RemoveRow drops the last row, never going below one.
func RemoveRow(size domain.GridSize) domain.GridSize {
	if size.Rows > 1 {
		size.Rows--
	}
	return size
}

func AddCol(size domain.GridSize) domain.GridSize {
	size.Cols++
	return size
}

// RemoveCol drops the last column, never going below one.
func RemoveCol(size domain.GridSize) domain.GridSize {
	if size.Cols > 1 {
		size.Cols--
	}
	return size
}
