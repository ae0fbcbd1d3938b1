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

package ec2fleet

import (
	"errors"
	"strings"
)

var (
	// ErrSpotRequestStateMissing is raised when the provider describes a
	// spot request with no state field set, an invariant violation.
	ErrSpotRequestStateMissing = errors.New("spot request has no state")

	// ErrSpotRequestNotSatisfied is the transient error the spot poller
	// retries on while some spot request is still awaiting satisfaction.
	// A request that settles into a terminal state (failed or cancelled)
	// is reported by set name instead, never through this error.
	ErrSpotRequestNotSatisfied = errors.New("spot request did not reach active state")
)

// These are the only two provider error substrings this package treats as
// transient.  Everything else escalates.  See SPEC_FULL.md / spec.md §9.
const (
	transientDescribeSubstringA = "spot instance request ID"
	transientDescribeSubstringB = "does not exist"

	transientTerminateSubstringA = "Pooled stream disconnected"
	transientTerminateSubstringB = "broken pipe"
)

// isTransientDescribeError reports whether err is the well known
// eventual-consistency race where describe-spot-instance-requests is
// called before the provider has finished propagating newly created IDs.
func isTransientDescribeError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, transientDescribeSubstringA) && strings.Contains(msg, transientDescribeSubstringB)
}

// isTransientTerminateError reports whether err is one of the flaky
// transport failures long-lived HTTP clients hit against the provider.
func isTransientTerminateError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, transientTerminateSubstringA) || strings.Contains(msg, transientTerminateSubstringB)
}
