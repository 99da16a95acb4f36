// Package metrics exposes the service's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MembersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendbook_members_created_total",
		Help: "Number of members registered.",
	})

	MembersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendbook_members_deleted_total",
		Help: "Number of members deleted.",
	})

	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendbook_payments_recorded_total",
		Help: "Number of payment transactions recorded.",
	})

	PaymentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lendbook_payments_rejected_total",
		Help: "Number of payment attempts rejected, by error code.",
	}, []string{"code"})

	BalancesRepaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendbook_balances_repaired_total",
		Help: "Number of member balances repaired by the auditor.",
	})
)
