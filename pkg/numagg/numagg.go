// Package numagg provides the public API for embedding the aggregation
// service. This is the stable API for external consumers.
package numagg

import (
	"github.com/tjfontaine/numagg/internal/app"
)

// App is the aggregation service.
// See internal/app.App for full documentation.
type App = app.App

// Option is a functional option for configuring an App.
type Option = app.Option

// New creates a new App with the given options.
// Example:
//
//	svc, err := numagg.New(
//	    numagg.WithConfigFile("config.yaml"),
//	)
var New = app.New

// Configuration options
var (
	WithConfigFile = app.WithConfigFile
	WithConfig     = app.WithConfig
	WithLogger     = app.WithLogger
	WithLogOutput  = app.WithLogOutput
)
