package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	shareTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfss_share_transitions_total",
		Help: "Share status transitions by target status and result",
	}, []string{"to", "result"})

	downloadDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfss_download_decisions_total",
		Help: "Download authorization decisions by outcome",
	}, []string{"decision"})

	sweptShares = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sfss_swept_shares_total",
		Help: "Expired shares retired by the sweeper",
	})
)
