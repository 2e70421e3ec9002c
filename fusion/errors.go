package fusion

import "errors"

var (
	// ErrWeightCount is returned when the number of weights does not
	// match the number of runs being fused.
	ErrWeightCount = errors.New("weight count must match run count")
)
