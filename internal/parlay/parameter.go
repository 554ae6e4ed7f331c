package parlay

import (
	"fmt"
	"math"
)

// DataType identifies the data feed a parameter reads.
type DataType string

const (
	DataTypeHashrate   DataType = "hashrate"
	DataTypeFeeRate    DataType = "feeRate"
	DataTypeBlockFees  DataType = "blockFees"
	DataTypeDifficulty DataType = "difficulty"
)

// AvailableDataTypes lists every data type the oracle can observe.
func AvailableDataTypes() []DataType {
	return []DataType{DataTypeHashrate, DataTypeFeeRate, DataTypeBlockFees, DataTypeDifficulty}
}

// ParseDataType converts a stored string into a DataType, rejecting unknown
// tags so pipeline logic never matches on raw strings.
func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case DataTypeHashrate, DataTypeFeeRate, DataTypeBlockFees, DataTypeDifficulty:
		return DataType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDataType, s)
	}
}

// Transformation is the nonlinear shaping function applied to a normalized
// fraction.
type Transformation string

const (
	TransformationLinear      Transformation = "linear"
	TransformationQuadratic   Transformation = "quadratic"
	TransformationSqrt        Transformation = "sqrt"
	TransformationExponential Transformation = "exponential"
	TransformationLogarithmic Transformation = "logarithmic"
)

func ParseTransformation(s string) (Transformation, error) {
	switch Transformation(s) {
	case TransformationLinear, TransformationQuadratic, TransformationSqrt,
		TransformationExponential, TransformationLogarithmic:
		return Transformation(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTransformation, s)
	}
}

// Parameter is one scored observation of a contract.
type Parameter struct {
	DataType         DataType
	Threshold        int64
	Range            int64
	IsAboveThreshold bool
	Transformation   Transformation
	Weight           float64
}

// Normalize maps a raw observed value onto [0,1] relative to the parameter's
// threshold and range. Values beyond the configured range saturate at the
// bounds rather than erroring.
func (p Parameter) Normalize(value float64) (float64, error) {
	if p.Range <= 0 {
		return 0, fmt.Errorf("%w: range=%d", ErrInvalidParameter, p.Range)
	}
	threshold := float64(p.Threshold)
	if p.IsAboveThreshold {
		// Parameter must exceed the threshold (e.g. hashrate > X).
		if value <= threshold {
			return 0, nil
		}
		return math.Min((value-threshold)/float64(p.Range), 1.0), nil
	}
	// Parameter must stay below the threshold (e.g. fee rate < Y).
	if value >= threshold {
		return 0, nil
	}
	return math.Min((threshold-value)/float64(p.Range), 1.0), nil
}

// Transform applies the parameter's shaping function to a normalized fraction.
func (p Parameter) Transform(normalized float64) (float64, error) {
	switch p.Transformation {
	case TransformationLinear:
		return normalized, nil
	case TransformationQuadratic:
		return normalized * normalized, nil
	case TransformationSqrt:
		return math.Sqrt(normalized), nil
	case TransformationExponential:
		return math.Exp(normalized), nil
	case TransformationLogarithmic:
		return math.Log(normalized), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTransformation, p.Transformation)
	}
}
