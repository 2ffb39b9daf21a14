package analyses

import "errors"

// ErrInvalidSector indicates the requested sector is not one of the selectable sectors.
var ErrInvalidSector = errors.New("invalid sector")

// ErrBadRequest indicates malformed request input other than the sector.
var ErrBadRequest = errors.New("bad request")

// ErrNotFound indicates the requested analysis does not exist for the tenant.
var ErrNotFound = errors.New("analysis not found")
