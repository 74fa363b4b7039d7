package advisor

import "errors"

var (
	// ErrNotFound means the customer's current location could not be
	// resolved, so there is no reference point to rank against.
	ErrNotFound = errors.New("current location not found")

	// ErrDataSource means the location store failed to load or parse.
	ErrDataSource = errors.New("location data source error")
)
