/*
Copyright 2022 EscherCloud.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics registers the prometheus collectors a long running host
// of this module can scrape to see fleet lifecycle activity. None of this
// existed in the original source; it's modeled on the teacher's own use of
// client_golang for its controller-runtime managers.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SpotRequestsPlaced counts spot instance requests issued, labelled by
	// machine set.
	SpotRequestsPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "burst",
		Subsystem: "fleet",
		Name:      "spot_requests_placed_total",
		Help:      "Total number of spot instance requests placed, by set.",
	}, []string{"set"})

	// InstancesTerminated counts instances terminated as part of a run's
	// guaranteed teardown.
	InstancesTerminated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "burst",
		Subsystem: "fleet",
		Name:      "instances_terminated_total",
		Help:      "Total number of instances terminated.",
	})

	// PollIterations counts describe calls issued while waiting for
	// readiness, by phase ("spot" or "instance").
	PollIterations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "burst",
		Subsystem: "fleet",
		Name:      "poll_iterations_total",
		Help:      "Total number of readiness poll iterations, by phase.",
	}, []string{"phase"})

	// SSHConnectRetries counts TCP connect attempts that failed and were
	// retried before a session was established or the budget expired.
	SSHConnectRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "burst",
		Subsystem: "ssh",
		Name:      "connect_retries_total",
		Help:      "Total number of retried SSH TCP connect attempts.",
	})

	// DispatchDuration observes how long dispatch to a single machine
	// takes, from dialing its SSH session to its setup routine returning.
	DispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "burst",
		Subsystem: "fleet",
		Name:      "dispatch_duration_seconds",
		Help:      "Duration of a single machine's setup dispatch, by set.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"set"})
)

// MustRegister registers every collector in this package against reg. It
// panics on a duplicate registration, matching prometheus's own
// MustRegister convention.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		SpotRequestsPlaced,
		InstancesTerminated,
		PollIterations,
		SSHConnectRetries,
		DispatchDuration,
	)
}
