package domain

import "errors"

// ErrAppInvalidURI indicates an app base URL that cannot be used to derive
// a cookie domain or redirect target.
var ErrAppInvalidURI = errors.New("app base url is not an absolute uri")
