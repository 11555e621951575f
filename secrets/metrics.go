// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coreplatform/secretcache/internal/metrics"
)

// RegisterMetrics registers this module's prometheus collectors with reg,
// mirroring the teacher's main.go registration of internal/metrics
// counter-vecs against the controller-runtime metrics registry. Embedding
// processes call this once against their own registry (e.g.
// prometheus.DefaultRegisterer) if they want cache/vault observability.
func RegisterMetrics(reg prometheus.Registerer) {
	metrics.Register(reg)
}
