package domain

import "net/http"

// NumberSequence is an ordered list of finite numbers parsed from the nums
// parameter.
type NumberSequence []float64

// AggregationKind selects which statistic to compute.
type AggregationKind string

const (
	AggregationMean   AggregationKind = "mean"
	AggregationMedian AggregationKind = "median"
	AggregationMode   AggregationKind = "mode"
)

// AggregationKinds lists every supported kind in route order.
var AggregationKinds = []AggregationKind{AggregationMean, AggregationMedian, AggregationMode}

// ParseAggregationKind returns the kind named by s.
func ParseAggregationKind(s string) (AggregationKind, bool) {
	for _, k := range AggregationKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// AggregationResult is the success payload of a request.
type AggregationResult struct {
	Operation AggregationKind `json:"operation"`
	Result    float64         `json:"result"`
}

// Envelope is the response of a single request. Exactly one of Result and
// Error is set.
type Envelope struct {
	Result *AggregationResult
	Error  *PipelineError
}

// Success wraps a result in an envelope.
func Success(kind AggregationKind, value float64) *Envelope {
	return &Envelope{Result: &AggregationResult{Operation: kind, Result: value}}
}

// Failure wraps an error in an envelope.
func Failure(err *PipelineError) *Envelope {
	return &Envelope{Error: err}
}

// OK reports whether the envelope carries a result.
func (e *Envelope) OK() bool {
	return e.Error == nil && e.Result != nil
}

// Status returns the HTTP status code the envelope should be sent with.
func (e *Envelope) Status() int {
	if e.Error != nil {
		return e.Error.HTTPStatusCode()
	}
	return http.StatusOK
}
