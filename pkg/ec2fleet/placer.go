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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/eschercloudai/burst/pkg/constants"
	"github.com/eschercloudai/burst/pkg/metrics"
)

// PlacementRequest describes one machine set's worth of spot capacity:
// count instances of instanceType running image, to be launched under the
// access context's security group and keypair.
type PlacementRequest struct {
	// SetName identifies the set these instances belong to.
	SetName string

	// InstanceType is the EC2 instance type, e.g. "t3.small".
	InstanceType string

	// ImageID is the AMI to boot.
	ImageID string

	// Count is how many instances to request.
	Count int32
}

// PlaceSpotRequests issues one RequestSpotInstances call per entry in sets
// and records every resulting spot-request-id against its set name in ids.
// A failure on any one set aborts the whole placement; requests already
// placed are left for the caller to reconcile via the poller and Terminate,
// matching spec.md §4.C's failure policy of never silently abandoning a
// partial placement.
func PlaceSpotRequests(ctx context.Context, client Client, access *AccessContext, sets []PlacementRequest, ids *IDMap) error {
	tracer := otel.GetTracerProvider().Tracer(constants.TracerName)

	ctx, span := tracer.Start(ctx, "ec2fleet.PlaceSpotRequests", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	for _, set := range sets {
		out, err := client.RequestSpotInstances(ctx, &ec2.RequestSpotInstancesInput{
			InstanceCount: aws.Int32(set.Count),
			LaunchSpecification: &types.RequestSpotLaunchSpecification{
				ImageId:          aws.String(set.ImageID),
				InstanceType:     types.InstanceType(set.InstanceType),
				KeyName:          aws.String(access.KeyName),
				SecurityGroupIds: []string{access.SecurityGroupID},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to place spot requests for set %q: %w", set.SetName, err)
		}

		for _, r := range out.SpotInstanceRequests {
			ids.Insert(stringOrEmpty(r.SpotInstanceRequestId), set.SetName)
		}

		metrics.SpotRequestsPlaced.WithLabelValues(set.SetName).Add(float64(len(out.SpotInstanceRequests)))
	}

	return nil
}
