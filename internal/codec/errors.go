// Package codec classifies pipeline failures and encodes response envelopes.
// WriteEnvelope is the only place a status code is assigned to a response.
package codec

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/tjfontaine/numagg/internal/domain"
	"github.com/tjfontaine/numagg/internal/stats"
)

// Classify converts any error to a *domain.PipelineError.
// If the error already is one, it is returned directly. Unrecognised errors
// become internal errors.
func Classify(err error) *domain.PipelineError {
	return ClassifyFor("", err)
}

// ClassifyFor is Classify with the aggregation kind available for messages.
func ClassifyFor(kind domain.AggregationKind, err error) *domain.PipelineError {
	if err == nil {
		return nil
	}

	var perr *domain.PipelineError
	if errors.As(err, &perr) {
		return perr
	}

	if errors.Is(err, stats.ErrEmptySequence) {
		subject := string(kind)
		if subject == "" {
			subject = "a statistic"
		}
		return domain.NewPipelineError(domain.ErrorKindMalformedElement,
			fmt.Sprintf("Cannot compute %s of an empty sequence.", subject))
	}

	return domain.ErrInternal(err.Error())
}

type errorBody struct {
	Error *domain.PipelineError `json:"error"`
}

// MarshalEnvelope encodes env as either the result object or the error object.
func MarshalEnvelope(env *domain.Envelope) ([]byte, error) {
	switch {
	case env == nil:
		return nil, errors.New("nil envelope")
	case env.Error != nil:
		return json.Marshal(errorBody{Error: env.Error})
	case env.Result != nil:
		return json.Marshal(env.Result)
	default:
		return nil, errors.New("empty envelope")
	}
}

// WriteEnvelope writes env with its status code.
func WriteEnvelope(w http.ResponseWriter, env *domain.Envelope) {
	body, err := MarshalEnvelope(env)
	if err != nil {
		env = domain.Failure(domain.ErrInternal(err.Error()))
		body, _ = MarshalEnvelope(env)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Status())
	w.Write(body)
}

// WriteError classifies err and writes it as an error envelope.
func WriteError(w http.ResponseWriter, err error) {
	WriteEnvelope(w, domain.Failure(Classify(err)))
}
