package parlay

import "errors"

var (
	// ErrInvalidParameter is returned when a contract setting is out of range,
	// such as a non-positive parameter range or quantization bound.
	ErrInvalidParameter = errors.New("parlay: invalid contract parameter")
	// ErrEmptyContract is returned when a contract has no parameters.
	ErrEmptyContract = errors.New("parlay: contract has no parameters")
	// ErrInvalidScore is returned when a combined score is NaN or negative.
	ErrInvalidScore = errors.New("parlay: combined score is NaN or negative")
	// ErrMissingInput is returned when a required data type is absent from the
	// observation map.
	ErrMissingInput = errors.New("parlay: missing observation for data type")

	ErrUnsupportedDataType          = errors.New("parlay: unsupported data type")
	ErrUnsupportedTransformation    = errors.New("parlay: unsupported transformation")
	ErrUnsupportedCombinationMethod = errors.New("parlay: unsupported combination method")
)
