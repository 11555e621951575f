// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package logging provides the concrete logr.Logger construction used by
// standalone processes embedding this module. Components themselves only
// depend on logr.Logger; this package is the one place that picks zap as
// the backend.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// New returns a production zap-backed logr.Logger named "secretcache".
func New() logr.Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(z).WithName("secretcache")
}

// Discard returns a no-op logger, used as the default when a component is
// constructed without an explicit logger.
func Discard() logr.Logger {
	return logr.Discard()
}
