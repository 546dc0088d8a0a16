package tax

import "errors"

var (
	ErrSlabTableEmpty = errors.New("tax slab table is empty")
	ErrSlabNotFound   = errors.New("no tax slab matches the income")
	ErrInvalidSlab    = errors.New("invalid tax slab definition")
)
