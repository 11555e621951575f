// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package metrics mirrors the teacher's internal/metrics counter-vec
// pattern (see internal/vault/client_factory.go's requestCounterVec):
// a small set of prometheus counters/gauges describing cache and vault
// backend activity. Registration is opt-in (Register) so embedding
// processes that don't run a prometheus registry pay nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CacheRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "secretcache",
		Name:      "refresh_total",
		Help:      "Number of secret cache refresh attempts, by outcome.",
	}, []string{"outcome"}) // "hit", "success", "failure"

	VaultLoginTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "secretcache",
		Name:      "vault_login_total",
		Help:      "Number of vault login attempts, by vault id and outcome.",
	}, []string{"vault_id", "outcome"})

	VaultFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "secretcache",
		Name:      "vault_fetch_total",
		Help:      "Number of vault fetch attempts, by vault id and outcome.",
	}, []string{"vault_id", "outcome"})

	CacheEntriesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "secretcache",
		Name:      "entries",
		Help:      "Current number of stable cache entries.",
	})
)

// Register registers all metrics collectors with reg. Safe to call more
// than once with different registries; panics if the same registry is
// given twice (prometheus.Registerer semantics), mirroring the teacher's
// single-registration-per-process usage in main.go.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(CacheRefreshTotal, VaultLoginTotal, VaultFetchTotal, CacheEntriesGauge)
}
