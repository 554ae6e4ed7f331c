package parlay

import (
	"fmt"
	"math"
)

// CombinationMethod merges a contract's transformed values into one score.
type CombinationMethod string

const (
	CombinationMultiply        CombinationMethod = "multiply"
	CombinationWeightedAverage CombinationMethod = "weightedAverage"
	CombinationGeometricMean   CombinationMethod = "geometricMean"
	CombinationMin             CombinationMethod = "min"
	CombinationMax             CombinationMethod = "max"
)

func ParseCombinationMethod(s string) (CombinationMethod, error) {
	switch CombinationMethod(s) {
	case CombinationMultiply, CombinationWeightedAverage, CombinationGeometricMean,
		CombinationMin, CombinationMax:
		return CombinationMethod(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCombinationMethod, s)
	}
}

// Contract is a parlay scoring contract.
type Contract struct {
	ID                 string
	Parameters         []Parameter
	CombinationMethod  CombinationMethod
	MaxNormalizedValue int64
}

// CombineScores folds transformed values and their weights into one combined
// score. For multiply the weight acts as an exponent, so a weight of 1.0
// leaves the value as a plain factor of the product.
func CombineScores(values, weights []float64, method CombinationMethod) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyContract
	}
	switch method {
	case CombinationMultiply:
		product := 1.0
		for i, v := range values {
			product *= math.Pow(v, weights[i])
		}
		return product, nil
	case CombinationWeightedAverage:
		var sum, totalWeight float64
		for i, v := range values {
			sum += v * weights[i]
			totalWeight += weights[i]
		}
		return sum / totalWeight, nil
	case CombinationGeometricMean:
		product := 1.0
		for _, v := range values {
			product *= v
		}
		return math.Pow(product, 1.0/float64(len(values))), nil
	case CombinationMin:
		minimum := math.Inf(1)
		for _, v := range values {
			minimum = math.Min(minimum, v)
		}
		return minimum, nil
	case CombinationMax:
		maximum := 0.0
		for _, v := range values {
			maximum = math.Max(maximum, v)
		}
		return maximum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCombinationMethod, method)
	}
}

// Quantize maps a combined score to the bounded integer that gets attested.
// The product is truncated toward zero, never rounded, and clamped to
// [0, max].
func Quantize(score float64, max int64) (int64, error) {
	if max <= 0 {
		return 0, fmt.Errorf("%w: max=%d", ErrInvalidParameter, max)
	}
	if math.IsNaN(score) || score < 0 {
		return 0, fmt.Errorf("%w: score=%v", ErrInvalidScore, score)
	}
	scaled := score * float64(max)
	if scaled >= float64(max) {
		return max, nil
	}
	return int64(scaled), nil
}

// ParameterResult is the audit trail of one parameter's trip through the
// pipeline.
type ParameterResult struct {
	DataType         DataType
	OriginalValue    float64
	NormalizedValue  float64
	TransformedValue float64
}

// Evaluation is the full result of scoring a contract against a set of
// observations.
type Evaluation struct {
	CombinedScore float64
	AttestedValue int64
	Parameters    []ParameterResult
}

// Evaluate runs every parameter through normalization and transformation,
// combines the results and quantizes the combined score.
func (c Contract) Evaluate(observations map[DataType]float64) (*Evaluation, error) {
	if len(c.Parameters) == 0 {
		return nil, ErrEmptyContract
	}

	results := make([]ParameterResult, 0, len(c.Parameters))
	values := make([]float64, 0, len(c.Parameters))
	weights := make([]float64, 0, len(c.Parameters))
	for _, param := range c.Parameters {
		value, ok := observations[param.DataType]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingInput, param.DataType)
		}
		normalized, err := param.Normalize(value)
		if err != nil {
			return nil, err
		}
		transformed, err := param.Transform(normalized)
		if err != nil {
			return nil, err
		}
		results = append(results, ParameterResult{
			DataType:         param.DataType,
			OriginalValue:    value,
			NormalizedValue:  normalized,
			TransformedValue: transformed,
		})
		values = append(values, transformed)
		weights = append(weights, param.Weight)
	}

	combined, err := CombineScores(values, weights, c.CombinationMethod)
	if err != nil {
		return nil, err
	}
	attested, err := Quantize(combined, c.MaxNormalizedValue)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		CombinedScore: combined,
		AttestedValue: attested,
		Parameters:    results,
	}, nil
}
