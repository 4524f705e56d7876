package cart

import "errors"

var (
	// -- Validation & Input --
	ErrUnknownProduct = errors.New("product not in catalog")
	ErrOutOfStock     = errors.New("product is out of stock")

	// -- Persistence Failures --
	ErrFailedLoadCart  = errors.New("failed to load saved cart")
	ErrFailedSaveCart  = errors.New("failed to save cart")
	ErrFailedClearCart = errors.New("failed to clear saved cart")
)
