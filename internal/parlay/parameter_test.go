package parlay

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeAboveThreshold(t *testing.T) {
	param := Parameter{
		Threshold:        20000,
		Range:            100000,
		IsAboveThreshold: true,
	}

	normalized, err := param.Normalize(25203)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	expected := (25203.0 - 20000.0) / 100000.0
	if normalized != expected {
		t.Fatalf("expected %v, got %v", expected, normalized)
	}
}

func TestNormalizeBelowThresholdValueReturnsZero(t *testing.T) {
	param := Parameter{
		Threshold:        3000000000000000,
		Range:            1000000000000000,
		IsAboveThreshold: true,
	}

	normalized, err := param.Normalize(2520332473552123)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if normalized != 0 {
		t.Fatalf("expected 0 for value below threshold, got %v", normalized)
	}
}

func TestNormalizeInverseDirection(t *testing.T) {
	param := Parameter{
		Threshold:        30000000,
		Range:            10000000,
		IsAboveThreshold: false,
	}

	normalized, err := param.Normalize(24212890)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	expected := (30000000.0 - 24212890.0) / 10000000.0
	if normalized != expected {
		t.Fatalf("expected %v, got %v", expected, normalized)
	}
}

func TestNormalizeSaturates(t *testing.T) {
	param := Parameter{
		Threshold:        1000,
		Range:            1000,
		IsAboveThreshold: true,
	}

	normalized, err := param.Normalize(1e12)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if normalized != 1.0 {
		t.Fatalf("expected saturation at 1.0, got %v", normalized)
	}
}

func TestNormalizeAlwaysInUnitInterval(t *testing.T) {
	params := []Parameter{
		{Threshold: 0, Range: 1, IsAboveThreshold: true},
		{Threshold: -5000, Range: 10, IsAboveThreshold: true},
		{Threshold: 1000, Range: 7, IsAboveThreshold: false},
		{Threshold: 2000000000000000, Range: 1000000000000000, IsAboveThreshold: true},
	}
	values := []float64{-1e18, -1, 0, 0.5, 999, 1000, 1001, 1e18}

	for _, param := range params {
		for _, value := range values {
			normalized, err := param.Normalize(value)
			if err != nil {
				t.Fatalf("normalize failed: %v", err)
			}
			if normalized < 0 || normalized > 1 {
				t.Fatalf("normalized value %v out of [0,1] for param %+v value %v", normalized, param, value)
			}
		}
	}
}

func TestNormalizeRejectsNonPositiveRange(t *testing.T) {
	param := Parameter{Threshold: 10, Range: 0, IsAboveThreshold: true}
	if _, err := param.Normalize(100); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}

	param.Range = -5
	if _, err := param.Normalize(100); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestTransformations(t *testing.T) {
	// Square at runtime so the expectation matches the pipeline's float64
	// product rather than a constant-folded value.
	quadIn := 0.52
	cases := []struct {
		transformation Transformation
		input          float64
		expected       float64
	}{
		{TransformationLinear, 0.52, 0.52},
		{TransformationQuadratic, quadIn, quadIn * quadIn},
		{TransformationSqrt, 0.25, 0.5},
		{TransformationExponential, 0, 1},
		{TransformationLogarithmic, 1, 0},
	}

	for _, tc := range cases {
		param := Parameter{Transformation: tc.transformation}
		got, err := param.Transform(tc.input)
		if err != nil {
			t.Fatalf("%s transform failed: %v", tc.transformation, err)
		}
		if got != tc.expected {
			t.Fatalf("%s(%v): expected %v, got %v", tc.transformation, tc.input, tc.expected, got)
		}
	}
}

func TestTransformMonotonic(t *testing.T) {
	for _, transformation := range []Transformation{TransformationLinear, TransformationQuadratic, TransformationSqrt} {
		param := Parameter{Transformation: transformation}
		prev := math.Inf(-1)
		for f := 0.0; f <= 1.0; f += 0.05 {
			got, err := param.Transform(f)
			if err != nil {
				t.Fatalf("transform failed: %v", err)
			}
			if got < prev {
				t.Fatalf("%s not monotonic at %v", transformation, f)
			}
			if got < 0 || got > 1 {
				t.Fatalf("%s output %v out of [0,1]", transformation, got)
			}
			prev = got
		}
	}
}

func TestParseTransformation(t *testing.T) {
	tags := []string{"linear", "quadratic", "sqrt", "exponential", "logarithmic"}
	for _, tag := range tags {
		parsed, err := ParseTransformation(tag)
		if err != nil {
			t.Fatalf("expected %q to parse: %v", tag, err)
		}
		if string(parsed) != tag {
			t.Fatalf("round trip mismatch for %q: %q", tag, parsed)
		}
	}

	if _, err := ParseTransformation("cubic"); !errors.Is(err, ErrUnsupportedTransformation) {
		t.Fatalf("expected ErrUnsupportedTransformation, got %v", err)
	}
}

func TestParseDataType(t *testing.T) {
	available := AvailableDataTypes()
	if len(available) != 4 {
		t.Fatalf("expected 4 data types, got %d", len(available))
	}
	expected := []string{"hashrate", "feeRate", "blockFees", "difficulty"}
	for i, dataType := range available {
		if string(dataType) != expected[i] {
			t.Fatalf("expected %q at %d, got %q", expected[i], i, dataType)
		}
		if _, err := ParseDataType(string(dataType)); err != nil {
			t.Fatalf("expected %q to parse: %v", dataType, err)
		}
	}

	if _, err := ParseDataType("mempoolSize"); !errors.Is(err, ErrUnsupportedDataType) {
		t.Fatalf("expected ErrUnsupportedDataType, got %v", err)
	}
}
