package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestedFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_ingested_files_total",
		Help: "Files successfully ingested, by category.",
	}, []string{"category"})

	ingestFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_ingest_failures_total",
		Help: "Failed ingestion attempts, by stage.",
	}, []string{"stage"})

	ingestedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_ingested_bytes_total",
		Help: "Total bytes written to object storage.",
	})
)
