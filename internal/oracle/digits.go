package oracle

import "fmt"

// DecomposeValue writes value as nbDigits base digits, most significant
// first, matching the order nonces were committed at announcement. Fails with
// ErrDigitOverflow when the value needs more digits than were committed.
func DecomposeValue(value int64, base, nbDigits int) ([]int, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: negative value %d", ErrDigitOverflow, value)
	}
	digits := make([]int, nbDigits)
	remaining := value
	for i := nbDigits - 1; i >= 0; i-- {
		digits[i] = int(remaining % int64(base))
		remaining /= int64(base)
	}
	if remaining > 0 {
		return nil, fmt.Errorf("%w: %d does not fit %d base-%d digits", ErrDigitOverflow, value, nbDigits, base)
	}
	return digits, nil
}
