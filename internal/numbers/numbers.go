// Package numbers converts the comma separated nums parameter into a
// validated sequence.
package numbers

import (
	"math"
	"strconv"
	"strings"

	"github.com/tjfontaine/numagg/internal/domain"
)

// Separator splits elements of the nums parameter.
const Separator = ","

// Parse splits raw on commas and converts every element to a finite number.
// Elements are not trimmed. Parsing stops at the first invalid element.
// The returned error is always a *domain.PipelineError.
func Parse(raw string) (domain.NumberSequence, error) {
	if raw == "" {
		return nil, domain.ErrMissingInput()
	}

	parts := strings.Split(raw, Separator)
	seq := make(domain.NumberSequence, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, domain.ErrMalformedElement(part, i)
		}
		seq = append(seq, v)
	}

	return seq, nil
}

// Format renders seq as the comma separated form accepted by Parse.
func Format(seq domain.NumberSequence) string {
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, Separator)
}
