// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics provides optional prometheus instrumentation around
// the UMB container's archive and umbio layers (SPEC_FULL.md A3). A
// nil *Collectors is valid and every method on it is a no-op, so
// instrumentation can be wired in only where a caller supplies a
// prometheus.Registerer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/umb/internal/wrappers"
)

// Collectors groups every prometheus collector UMB registers. All
// fields are safe to read through a nil *Collectors receiver.
type Collectors struct {
	archiveReads  prometheus.Counter
	archiveWrites prometheus.Counter
	archiveBytes  prometheus.Counter
	unreadMembers prometheus.Counter
	loadDuration  prometheus.Histogram
	storeDuration prometheus.Histogram
}

// NewCollectors registers UMB's collectors against reg and returns a
// nil (no-op) *Collectors when reg is nil. Registration aggregates
// every registration error via wrappers.Errs the way the teacher's
// NewAveragerWithErrs reports partial-registration failures
// (_examples/luxfi-consensus/metrics/metric.go).
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		return nil, nil
	}
	c := &Collectors{
		archiveReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umb_archive_reads_total",
			Help: "Number of tape-archive read operations.",
		}),
		archiveWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umb_archive_writes_total",
			Help: "Number of tape-archive write operations.",
		}),
		archiveBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umb_archive_bytes_total",
			Help: "Total bytes moved through tape-archive read and write.",
		}),
		unreadMembers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umb_unread_members_total",
			Help: "Archive members loaded but never consumed by the umbio reader.",
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "umb_load_duration_seconds",
			Help:    "Wall-clock time to load a full ATS from an UMB file.",
			Buckets: prometheus.DefBuckets,
		}),
		storeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "umb_store_duration_seconds",
			Help:    "Wall-clock time to write a full ATS to an UMB file.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	var errs wrappers.Errs
	for _, collector := range []prometheus.Collector{
		c.archiveReads, c.archiveWrites, c.archiveBytes,
		c.unreadMembers, c.loadDuration, c.storeDuration,
	} {
		errs.Add(reg.Register(collector))
	}
	if errs.Errored() {
		return nil, errs.Err()
	}
	return c, nil
}

// ObserveArchiveRead records one archive read of n bytes.
func (c *Collectors) ObserveArchiveRead(n int) {
	if c == nil {
		return
	}
	c.archiveReads.Inc()
	c.archiveBytes.Add(float64(n))
}

// ObserveArchiveWrite records one archive write of n bytes.
func (c *Collectors) ObserveArchiveWrite(n int) {
	if c == nil {
		return
	}
	c.archiveWrites.Inc()
	c.archiveBytes.Add(float64(n))
}

// ObserveUnreadMembers records count members left unconsumed by a load.
func (c *Collectors) ObserveUnreadMembers(count int) {
	if c == nil || count == 0 {
		return
	}
	c.unreadMembers.Add(float64(count))
}

// ObserveLoad records the wall-clock duration of one ATS load.
func (c *Collectors) ObserveLoad(d time.Duration) {
	if c == nil {
		return
	}
	c.loadDuration.Observe(d.Seconds())
}

// ObserveStore records the wall-clock duration of one ATS store.
func (c *Collectors) ObserveStore(d time.Duration) {
	if c == nil {
		return
	}
	c.storeDuration.Observe(d.Seconds())
}
