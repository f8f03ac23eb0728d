package gauss

import "errors"

var ErrSingularCovariance = errors.New("covariance matrix is singular")
var ErrDimensionMismatch = errors.New("dimension mismatch")
