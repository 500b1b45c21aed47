package services

import "errors"

// Not-found sentinels. Their text is what the API returns with a 404.
var (
	ErrProjectNotFound     = errors.New("Project not found")
	ErrSpaceNotFound       = errors.New("Space not found")
	ErrMeasurementNotFound = errors.New("Measurement not found")
	ErrProductNotFound     = errors.New("Product not found")
	ErrImageNotFound       = errors.New("Image not found")
)

// ErrObjectStoreDisabled is returned by image operations when no object
// store is configured.
var ErrObjectStoreDisabled = errors.New("image storage is not configured")

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrSpaceNotFound) ||
		errors.Is(err, ErrMeasurementNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrImageNotFound)
}
