package imageedit

import "errors"

var (
	ErrDecodeFailure                = errors.New("image could not be decoded")
	ErrNoSource                     = errors.New("no source image loaded")
	ErrSessionClosed                = errors.New("edit session is closed")
	ErrUnknownParameter             = errors.New("unknown parameter")
	ErrInvalidValue                 = errors.New("invalid parameter value")
	ErrBackgroundRemovalUnavailable = errors.New("background removal is not available")
	ErrSourceChanged                = errors.New("source image changed during background removal")
)
