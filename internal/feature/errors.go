package feature

import "errors"

// ErrImageDecode indicates the input file could not be read or decoded as
// a raster image.
var ErrImageDecode = errors.New("image decode failed")
