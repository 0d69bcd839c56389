package repository

import "errors"

// ErrNotFound is returned when a product, order or print job id does not
// exist. Handlers map it to a 404.
var ErrNotFound = errors.New("not found")
