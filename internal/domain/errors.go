package domain

import "errors"

// ErrInvalidCategory is returned by ParseCategory for unknown names.
var ErrInvalidCategory = errors.New("invalid category")
