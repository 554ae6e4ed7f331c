package parlay

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluateLinearSingleParameter(t *testing.T) {
	contract := Contract{
		ID: "single-linear",
		Parameters: []Parameter{
			{
				DataType:         DataTypeHashrate,
				Threshold:        20000,
				Range:            100000,
				IsAboveThreshold: true,
				Transformation:   TransformationLinear,
				Weight:           1.0,
			},
		},
		CombinationMethod:  CombinationMultiply,
		MaxNormalizedValue: 1000,
	}

	evaluation, err := contract.Evaluate(map[DataType]float64{DataTypeHashrate: 25203})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	expectedNormalized := (25203.0 - 20000.0) / 100000.0
	if evaluation.Parameters[0].NormalizedValue != expectedNormalized {
		t.Fatalf("expected normalized %v, got %v", expectedNormalized, evaluation.Parameters[0].NormalizedValue)
	}
	if evaluation.Parameters[0].TransformedValue != expectedNormalized {
		t.Fatalf("linear transform should be identity, got %v", evaluation.Parameters[0].TransformedValue)
	}
	if evaluation.CombinedScore != expectedNormalized {
		t.Fatalf("expected combined %v, got %v", expectedNormalized, evaluation.CombinedScore)
	}
	if evaluation.AttestedValue != 52 {
		t.Fatalf("expected attested value 52, got %d", evaluation.AttestedValue)
	}
}

func TestEvaluateMultiplyTwoParameters(t *testing.T) {
	contract := Contract{
		ID: "hashrate-and-fees",
		Parameters: []Parameter{
			{
				DataType:         DataTypeHashrate,
				Threshold:        2000000000000000,
				Range:            1000000000000000,
				IsAboveThreshold: true,
				Transformation:   TransformationLinear,
				Weight:           1.0,
			},
			{
				DataType:         DataTypeBlockFees,
				Threshold:        20000000,
				Range:            10000000,
				IsAboveThreshold: true,
				Transformation:   TransformationLinear,
				Weight:           1.0,
			},
		},
		CombinationMethod:  CombinationMultiply,
		MaxNormalizedValue: 1000,
	}

	evaluation, err := contract.Evaluate(map[DataType]float64{
		DataTypeHashrate:  2520332473552123,
		DataTypeBlockFees: 24212890,
	})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	n1 := (2520332473552123.0 - 2000000000000000.0) / 1000000000000000.0
	n2 := (24212890.0 - 20000000.0) / 10000000.0
	if evaluation.Parameters[0].NormalizedValue != n1 {
		t.Fatalf("expected first normalized %v, got %v", n1, evaluation.Parameters[0].NormalizedValue)
	}
	if evaluation.Parameters[1].NormalizedValue != n2 {
		t.Fatalf("expected second normalized %v, got %v", n2, evaluation.Parameters[1].NormalizedValue)
	}
	if evaluation.CombinedScore != n1*n2 {
		t.Fatalf("expected combined %v, got %v", n1*n2, evaluation.CombinedScore)
	}
	if evaluation.AttestedValue != 219 {
		t.Fatalf("expected attested value 219, got %d", evaluation.AttestedValue)
	}
}

func TestEvaluateQuadratic(t *testing.T) {
	contract := Contract{
		ID: "quadratic",
		Parameters: []Parameter{
			{
				DataType:         DataTypeHashrate,
				Threshold:        2000000000000000,
				Range:            1000000000000000,
				IsAboveThreshold: true,
				Transformation:   TransformationQuadratic,
				Weight:           1.0,
			},
		},
		CombinationMethod:  CombinationMultiply,
		MaxNormalizedValue: 1000,
	}

	evaluation, err := contract.Evaluate(map[DataType]float64{DataTypeHashrate: 2520332473552123})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	normalized := (2520332473552123.0 - 2000000000000000.0) / 1000000000000000.0
	if evaluation.Parameters[0].TransformedValue != normalized*normalized {
		t.Fatalf("expected transformed %v, got %v", normalized*normalized, evaluation.Parameters[0].TransformedValue)
	}
	if evaluation.AttestedValue != 270 {
		t.Fatalf("expected attested value 270, got %d", evaluation.AttestedValue)
	}
}

func TestEvaluateBelowThresholdClamp(t *testing.T) {
	contract := Contract{
		ID: "below-threshold",
		Parameters: []Parameter{
			{
				DataType:         DataTypeHashrate,
				Threshold:        3000000000000000,
				Range:            1000000000000000,
				IsAboveThreshold: true,
				Transformation:   TransformationLinear,
				Weight:           1.0,
			},
		},
		CombinationMethod:  CombinationMultiply,
		MaxNormalizedValue: 1000,
	}

	evaluation, err := contract.Evaluate(map[DataType]float64{DataTypeHashrate: 2520332473552123})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if evaluation.CombinedScore != 0 {
		t.Fatalf("expected combined 0, got %v", evaluation.CombinedScore)
	}
	if evaluation.AttestedValue != 0 {
		t.Fatalf("expected attested value 0, got %d", evaluation.AttestedValue)
	}
}

func TestEvaluateInverseDirectionTruncates(t *testing.T) {
	contract := Contract{
		ID: "fee-rate-below",
		Parameters: []Parameter{
			{
				DataType:         DataTypeFeeRate,
				Threshold:        30000000,
				Range:            10000000,
				IsAboveThreshold: false,
				Transformation:   TransformationLinear,
				Weight:           1.0,
			},
		},
		CombinationMethod:  CombinationMultiply,
		MaxNormalizedValue: 1000,
	}

	evaluation, err := contract.Evaluate(map[DataType]float64{DataTypeFeeRate: 24212890})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	expected := (30000000.0 - 24212890.0) / 10000000.0
	if evaluation.CombinedScore != expected {
		t.Fatalf("expected combined %v, got %v", expected, evaluation.CombinedScore)
	}
	// 0.578711 * 1000 truncates to 578, it must not round up to 579.
	if evaluation.AttestedValue != 578 {
		t.Fatalf("expected attested value 578, got %d", evaluation.AttestedValue)
	}
}

func TestMultiplyEqualsProductAtWeightOne(t *testing.T) {
	values := []float64{0.52, 0.421289, 0.9, 0.1}
	weights := []float64{1, 1, 1, 1}

	combined, err := CombineScores(values, weights, CombinationMultiply)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	product := 1.0
	for _, v := range values {
		product *= v
	}
	if combined != product {
		t.Fatalf("expected product %v, got %v", product, combined)
	}
}

func TestCombineScores(t *testing.T) {
	values := []float64{0.2, 0.8, 0.5}
	weights := []float64{1, 2, 1}

	var weightedSum, totalWeight float64
	product := 1.0
	for i, v := range values {
		weightedSum += v * weights[i]
		totalWeight += weights[i]
		product *= v
	}

	cases := []struct {
		method   CombinationMethod
		expected float64
	}{
		{CombinationWeightedAverage, weightedSum / totalWeight},
		{CombinationGeometricMean, math.Pow(product, 1.0/3.0)},
		{CombinationMin, 0.2},
		{CombinationMax, 0.8},
	}

	for _, tc := range cases {
		got, err := CombineScores(values, weights, tc.method)
		if err != nil {
			t.Fatalf("%s combine failed: %v", tc.method, err)
		}
		if got != tc.expected {
			t.Fatalf("%s: expected %v, got %v", tc.method, tc.expected, got)
		}
	}
}

func TestCombineScoresEmptyInput(t *testing.T) {
	if _, err := CombineScores(nil, nil, CombinationMultiply); !errors.Is(err, ErrEmptyContract) {
		t.Fatalf("expected ErrEmptyContract, got %v", err)
	}
}

func TestQuantizeTruncatesNotRounds(t *testing.T) {
	cases := []struct {
		score    float64
		max      int64
		expected int64
	}{
		{0.05203, 1000, 52},
		{0.578711, 1000, 578},
		{0.9999, 1000, 999},
		{0.0, 1000, 0},
		{1.0, 1000, 1000},
		{1.5, 1000, 1000},
		{math.Exp(1), 1000, 1000},
	}

	for _, tc := range cases {
		got, err := Quantize(tc.score, tc.max)
		if err != nil {
			t.Fatalf("quantize(%v, %d) failed: %v", tc.score, tc.max, err)
		}
		if got != tc.expected {
			t.Fatalf("quantize(%v, %d): expected %d, got %d", tc.score, tc.max, tc.expected, got)
		}
	}
}

func TestQuantizeRejectsInvalidScore(t *testing.T) {
	if _, err := Quantize(math.NaN(), 1000); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore for NaN, got %v", err)
	}
	if _, err := Quantize(-0.1, 1000); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore for negative score, got %v", err)
	}
}

func TestQuantizeRejectsNonPositiveMax(t *testing.T) {
	if _, err := Quantize(0.5, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for zero max, got %v", err)
	}
	if _, err := Quantize(0.5, -1000); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for negative max, got %v", err)
	}
}

func TestEvaluateMissingObservation(t *testing.T) {
	contract := Contract{
		Parameters: []Parameter{
			{DataType: DataTypeHashrate, Threshold: 1, Range: 1, IsAboveThreshold: true, Transformation: TransformationLinear, Weight: 1},
			{DataType: DataTypeDifficulty, Threshold: 1, Range: 1, IsAboveThreshold: true, Transformation: TransformationLinear, Weight: 1},
		},
		CombinationMethod:  CombinationMultiply,
		MaxNormalizedValue: 1000,
	}

	_, err := contract.Evaluate(map[DataType]float64{DataTypeHashrate: 5})
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestEvaluateEmptyContract(t *testing.T) {
	contract := Contract{CombinationMethod: CombinationMultiply, MaxNormalizedValue: 1000}
	if _, err := contract.Evaluate(map[DataType]float64{}); !errors.Is(err, ErrEmptyContract) {
		t.Fatalf("expected ErrEmptyContract, got %v", err)
	}
}

func TestParseCombinationMethod(t *testing.T) {
	tags := []string{"multiply", "weightedAverage", "geometricMean", "min", "max"}
	for _, tag := range tags {
		parsed, err := ParseCombinationMethod(tag)
		if err != nil {
			t.Fatalf("expected %q to parse: %v", tag, err)
		}
		if string(parsed) != tag {
			t.Fatalf("round trip mismatch for %q: %q", tag, parsed)
		}
	}

	if _, err := ParseCombinationMethod("sum"); !errors.Is(err, ErrUnsupportedCombinationMethod) {
		t.Fatalf("expected ErrUnsupportedCombinationMethod, got %v", err)
	}
}
