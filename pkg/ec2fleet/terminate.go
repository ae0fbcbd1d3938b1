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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/constants"
	"github.com/eschercloudai/burst/pkg/metrics"
	"github.com/eschercloudai/burst/pkg/retry"
)

// Terminate tears down everything a run created: it terminates every
// instance id in instanceIDs, retrying only on the handful of transport
// errors known to be transient, then deletes the security group and
// keypair in access.
//
// Per the resolution of spec.md §9 Open Question #2, group and keypair
// deletion is done here rather than left to the caller, since neither can
// be deleted while an instance still references them.
func Terminate(ctx context.Context, client Client, cfg *config.Config, instanceIDs []string, access *AccessContext) error {
	tracer := otel.GetTracerProvider().Tracer(constants.TracerName)

	ctx, span := tracer.Start(ctx, "ec2fleet.Terminate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if len(instanceIDs) > 0 {
		r := retry.WithContext(ctx).WithPeriod(cfg.PollPeriod)

		err := r.DoClassified(func() (bool, error) {
			_, err := client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
				InstanceIds: instanceIDs,
			})
			if err != nil {
				return isTransientTerminateError(err), err
			}

			return false, nil
		})
		if err != nil {
			return fmt.Errorf("failed to terminate instances: %w", err)
		}

		metrics.InstancesTerminated.Add(float64(len(instanceIDs)))
	}

	if access == nil {
		return nil
	}

	if access.SecurityGroupID != "" {
		if _, err := client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
			GroupId: &access.SecurityGroupID,
		}); err != nil {
			return fmt.Errorf("failed to terminate instances: %w", err)
		}
	}

	if access.KeyName != "" {
		if _, err := client.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
			KeyName: &access.KeyName,
		}); err != nil {
			return fmt.Errorf("failed to terminate instances: %w", err)
		}
	}

	return nil
}
