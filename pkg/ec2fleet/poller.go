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
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/constants"
	"github.com/eschercloudai/burst/pkg/metrics"
	"github.com/eschercloudai/burst/pkg/retry"
)

// Machine is a spot instance that has reached full describe completeness:
// every field the dispatcher needs to open an SSH session is populated.
type Machine struct {
	SetName      string
	InstanceID   string
	InstanceType string
	PrivateIP    string
	PublicDNS    string
	PublicIP     string
}

// terminalSpotStates are states a spot request settles into without ever
// being satisfied.  Per the resolution of spec.md §9 Open Question #4,
// these are surfaced as a PlacementError for their set rather than
// silently dropped.
var terminalSpotStates = map[types.SpotInstanceState]bool{
	types.SpotInstanceStateFailed:    true,
	types.SpotInstanceStateCancelled: true,
}

// PollSpotRequestsUntilSatisfied implements phase D1: describe the spot
// requests tracked in ids every cfg.PollPeriod until each has either
// reached "active" with its instance-id assigned (rekeyed in ids from
// spot-request-id to instance-id) or settled into a terminal state
// (removed from ids and reported back in the returned slice). An "active"
// request that hasn't yet been assigned an instance-id is left pending:
// quiescence requires no open request AND no active request missing its
// instance-id, not merely "active".
//
// Describe calls that race ahead of request-id propagation
// (isTransientDescribeError) are retried transparently; any other error
// escalates immediately. The returned slice names every set whose spot
// request settled into a terminal state; a non-nil error only reports an
// unrecoverable polling failure, never a terminal spot state.
func PollSpotRequestsUntilSatisfied(ctx context.Context, client Client, cfg *config.Config, ids *IDMap) ([]string, error) {
	tracer := otel.GetTracerProvider().Tracer(constants.TracerName)

	ctx, span := tracer.Start(ctx, "ec2fleet.PollSpotRequestsUntilSatisfied", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var failed []string

	r := retry.WithContext(ctx).WithPeriod(cfg.PollPeriod)

	err := r.DoClassified(func() (bool, error) {
		var pending []string

		for _, id := range ids.IDs() {
			if len(id) >= 4 && id[:4] == "sir-" {
				pending = append(pending, id)
			}
		}

		if len(pending) == 0 {
			return false, nil
		}

		metrics.PollIterations.WithLabelValues("spot").Inc()

		out, err := client.DescribeSpotInstanceRequests(ctx, &ec2.DescribeSpotInstanceRequestsInput{
			SpotInstanceRequestIds: pending,
		})
		if err != nil {
			return isTransientDescribeError(err), err
		}

		for _, req := range out.SpotInstanceRequests {
			reqID := stringOrEmpty(req.SpotInstanceRequestId)

			setName, ok := ids.SetName(reqID)
			if !ok {
				continue
			}

			if req.State == "" {
				return false, ErrSpotRequestStateMissing
			}

			switch {
			case req.State == types.SpotInstanceStateActive:
				if instanceID := stringOrEmpty(req.InstanceId); instanceID != "" {
					ids.Rekey(reqID, instanceID)
				}
			case terminalSpotStates[req.State]:
				ids.Remove(reqID)
				failed = append(failed, setName)
			}
		}

		if remaining := ids.IDs(); stillPendingSpotRequest(remaining) {
			return true, fmt.Errorf("%d spot request(s) not yet satisfied: %w", len(remaining), ErrSpotRequestNotSatisfied)
		}

		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return failed, nil
}

// stillPendingSpotRequest reports whether any id in remaining still looks
// like a spot-request-id (sir-...) rather than an instance-id (i-...),
// meaning D1 hasn't rekeyed it yet.
func stillPendingSpotRequest(remaining []string) bool {
	for _, id := range remaining {
		if len(id) >= 4 && id[:4] == "sir-" {
			return true
		}
	}

	return false
}

// PollInstancesUntilComplete implements phase D2: describe the instances
// tracked in ids, every cfg.PollPeriod, until every one of them reports an
// instance id, type, private IP, public DNS name and public IP. A
// describe that returns even one incomplete instance discards the whole
// accumulated batch and restarts next iteration, since a partial view is
// not distinguishable from a transient omission.
//
// If cfg.InstanceDescribeMaxAttempts is non-zero, the loop gives up after
// that many attempts and returns an error (which Builder.Run wraps in a
// PollingError) instead of waiting forever on an instance that will never
// acquire a public IP (e.g. one placed in a subnet with public IP
// assignment disabled). A DescribeInstances error is never retried: it is
// returned immediately.
func PollInstancesUntilComplete(ctx context.Context, client Client, cfg *config.Config, ids *IDMap) ([]Machine, error) {
	tracer := otel.GetTracerProvider().Tracer(constants.TracerName)

	ctx, span := tracer.Start(ctx, "ec2fleet.PollInstancesUntilComplete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var (
		machines []Machine
		attempts int
	)

	r := retry.WithContext(ctx).WithPeriod(cfg.PollPeriod)

	err := r.DoClassified(func() (bool, error) {
		attempts++

		metrics.PollIterations.WithLabelValues("instance").Inc()

		ready, complete, err := describeInstancesOnce(ctx, client, ids)
		if err != nil {
			return false, err
		}

		if complete {
			machines = ready
			return false, nil
		}

		if cfg.InstanceDescribeMaxAttempts > 0 && attempts >= cfg.InstanceDescribeMaxAttempts {
			return false, fmt.Errorf("instances did not reach describe completeness after %d attempts", attempts)
		}

		return true, errors.New("instance describe incomplete")
	})
	if err != nil {
		return nil, err
	}

	return machines, nil
}

// describeInstancesOnce runs a single DescribeInstances call over every id
// in ids and reports whether every instance has every field this module
// needs to hand off to the dispatcher.
func describeInstancesOnce(ctx context.Context, client Client, ids *IDMap) ([]Machine, bool, error) {
	instanceIDs := ids.IDs()
	if len(instanceIDs) == 0 {
		return nil, true, nil
	}

	out, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: instanceIDs,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to describe instances: %w", err)
	}

	machines := make([]Machine, 0, len(instanceIDs))

	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			instanceID := stringOrEmpty(inst.InstanceId)

			setName, ok := ids.SetName(instanceID)
			if !ok {
				continue
			}

			m := Machine{
				SetName:      setName,
				InstanceID:   instanceID,
				InstanceType: string(inst.InstanceType),
				PrivateIP:    stringOrEmpty(inst.PrivateIpAddress),
				PublicDNS:    stringOrEmpty(inst.PublicDnsName),
				PublicIP:     stringOrEmpty(inst.PublicIpAddress),
			}

			if !machineComplete(m) {
				return nil, false, nil
			}

			machines = append(machines, m)
		}
	}

	if len(machines) != len(instanceIDs) {
		return nil, false, nil
	}

	return machines, true, nil
}

// machineComplete reports whether every field the dispatcher depends on is
// populated.  Per spec.md this includes the public IP even though the
// original source's describe-completeness check didn't (see SPEC_FULL.md's
// note on Open Question #1).
func machineComplete(m Machine) bool {
	return m.InstanceID != "" && m.InstanceType != "" && m.PrivateIP != "" && m.PublicDNS != "" && m.PublicIP != ""
}

// CancelSpotRequests cancels every spot request in requestIDs.  It is
// called once D1 settles, successful or not, so no request is left open
// after the pipeline has recorded its outcome.
func CancelSpotRequests(ctx context.Context, client Client, requestIDs []string) error {
	if len(requestIDs) == 0 {
		return nil
	}

	tracer := otel.GetTracerProvider().Tracer(constants.TracerName)

	ctx, span := tracer.Start(ctx, "ec2fleet.CancelSpotRequests", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if _, err := client.CancelSpotInstanceRequests(ctx, &ec2.CancelSpotInstanceRequestsInput{
		SpotInstanceRequestIds: requestIDs,
	}); err != nil {
		return fmt.Errorf("failed to cancel spot requests: %w", err)
	}

	return nil
}
