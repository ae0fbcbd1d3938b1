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

package fleet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/ec2fleet"
	"github.com/eschercloudai/burst/pkg/ec2fleet/mock"
	"github.com/eschercloudai/burst/pkg/fleet"
	"github.com/eschercloudai/burst/pkg/fleeterrors"
	"github.com/eschercloudai/burst/pkg/sshclient"
)

func testSetup() fleet.MachineSetup {
	return fleet.MachineSetup{
		InstanceType: "t3.small",
		ImageID:      "ami-1",
		Setup: func(ctx context.Context, session sshclient.Session, machine ec2fleet.Machine) error {
			return nil
		},
	}
}

func TestRunFailsClosedWhenAccessProvisioningFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockClient(ctrl)
	client.EXPECT().CreateSecurityGroup(gomock.Any(), gomock.Any()).Return(nil, errors.New("quota exceeded"))

	cfg := config.New(config.WithPollPeriod(time.Millisecond))

	b := fleet.NewBuilder(client, cfg)
	b.AddSet("server", 1, testSetup())

	err := b.Run(context.Background(), func(map[string][]fleet.Machine) error { return nil })

	require.Error(t, err)

	var accessErr *fleeterrors.AccessProvisioningError
	assert.ErrorAs(t, err, &accessErr)
}

func TestRunTerminatesAccessResourcesWhenPlacementFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockClient(ctrl)

	client.EXPECT().CreateSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.CreateSecurityGroupOutput{
		GroupId: aws.String("sg-1"),
	}, nil)
	client.EXPECT().AuthorizeSecurityGroupIngress(gomock.Any(), gomock.Any()).Return(&ec2.AuthorizeSecurityGroupIngressOutput{}, nil)
	client.EXPECT().CreateKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.CreateKeyPairOutput{
		KeyMaterial: aws.String("fake-key-material"),
	}, nil)
	client.EXPECT().RequestSpotInstances(gomock.Any(), gomock.Any()).Return(nil, errors.New("insufficient capacity"))

	// Guaranteed termination still runs even though nothing was placed:
	// the security group and keypair it created must be cleaned up.
	client.EXPECT().DeleteSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.DeleteSecurityGroupOutput{}, nil)
	client.EXPECT().DeleteKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.DeleteKeyPairOutput{}, nil)

	cfg := config.New(config.WithPollPeriod(time.Millisecond))

	b := fleet.NewBuilder(client, cfg)
	b.AddSet("server", 1, testSetup())

	err := b.Run(context.Background(), func(map[string][]fleet.Machine) error { return nil })

	require.Error(t, err)

	var placementErr *fleeterrors.PlacementError
	assert.ErrorAs(t, err, &placementErr)
}

func TestAddSetReplacesExistingDescriptor(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockClient(ctrl)

	client.EXPECT().CreateSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.CreateSecurityGroupOutput{
		GroupId: aws.String("sg-1"),
	}, nil)
	client.EXPECT().AuthorizeSecurityGroupIngress(gomock.Any(), gomock.Any()).Return(&ec2.AuthorizeSecurityGroupIngressOutput{}, nil)
	client.EXPECT().CreateKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.CreateKeyPairOutput{
		KeyMaterial: aws.String("fake-key-material"),
	}, nil)

	// Only one RequestSpotInstances call is expected: the second AddSet
	// call for "server" must have replaced the first, not appended to it.
	client.EXPECT().RequestSpotInstances(gomock.Any(), gomock.Any()).Return(nil, errors.New("stop here"))
	client.EXPECT().DeleteSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.DeleteSecurityGroupOutput{}, nil)
	client.EXPECT().DeleteKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.DeleteKeyPairOutput{}, nil)

	cfg := config.New(config.WithPollPeriod(time.Millisecond))

	b := fleet.NewBuilder(client, cfg)
	b.AddSet("server", 1, testSetup())
	b.AddSet("server", 5, testSetup())

	err := b.Run(context.Background(), func(map[string][]fleet.Machine) error { return nil })
	require.Error(t, err)
}

func TestAddSetPanicsOnNonPositiveCount(t *testing.T) {
	t.Parallel()

	b := fleet.NewBuilder(nil, config.New())

	assert.Panics(t, func() {
		b.AddSet("server", 0, testSetup())
	})
}

// fakeSession is a zero-dependency Session used by the happy-path tests
// below: unlike MockSession it needs no per-call expectations, since those
// tests only care that dispatch reached every machine, not what command
// ran on it.
type fakeSession struct{}

func (fakeSession) Run(ctx context.Context, cmd string) (string, error) { return "", nil }
func (fakeSession) Close() error                                       { return nil }

type fakeDialer struct{}

func (fakeDialer) Dial(ctx context.Context, cfg *config.Config, host, keyPath string) (sshclient.Session, error) {
	return fakeSession{}, nil
}

// TestRunDeliversFullFleetAndInvariants drives Builder.Run through a
// complete successful pipeline for one two-machine set and checks the
// quantified invariants: the callback receives exactly as many machines
// as were requested, every delivered field is non-empty, and dispatch ran
// against every one of them.
func TestRunDeliversFullFleetAndInvariants(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockClient(ctrl)

	client.EXPECT().CreateSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.CreateSecurityGroupOutput{
		GroupId: aws.String("sg-1"),
	}, nil)
	client.EXPECT().AuthorizeSecurityGroupIngress(gomock.Any(), gomock.Any()).Return(&ec2.AuthorizeSecurityGroupIngressOutput{}, nil)
	client.EXPECT().CreateKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.CreateKeyPairOutput{
		KeyMaterial: aws.String("fake-key-material"),
	}, nil)

	client.EXPECT().RequestSpotInstances(gomock.Any(), gomock.Any()).Return(&ec2.RequestSpotInstancesOutput{
		SpotInstanceRequests: []types.SpotInstanceRequest{
			{SpotInstanceRequestId: aws.String("sir-1")},
			{SpotInstanceRequestId: aws.String("sir-2")},
		},
	}, nil)

	client.EXPECT().DescribeSpotInstanceRequests(gomock.Any(), gomock.Any()).Return(&ec2.DescribeSpotInstanceRequestsOutput{
		SpotInstanceRequests: []types.SpotInstanceRequest{
			{SpotInstanceRequestId: aws.String("sir-1"), InstanceId: aws.String("i-1"), State: types.SpotInstanceStateActive},
			{SpotInstanceRequestId: aws.String("sir-2"), InstanceId: aws.String("i-2"), State: types.SpotInstanceStateActive},
		},
	}, nil)

	client.EXPECT().CancelSpotInstanceRequests(gomock.Any(), gomock.Any()).Return(&ec2.CancelSpotInstanceRequestsOutput{}, nil)

	client.EXPECT().DescribeInstances(gomock.Any(), gomock.Any()).Return(&ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{
			Instances: []types.Instance{
				{
					InstanceId:       aws.String("i-1"),
					InstanceType:     types.InstanceTypeT3Small,
					PrivateIpAddress: aws.String("10.0.0.1"),
					PublicDnsName:    aws.String("ec2-1.compute.amazonaws.com"),
					PublicIpAddress:  aws.String("1.2.3.1"),
				},
				{
					InstanceId:       aws.String("i-2"),
					InstanceType:     types.InstanceTypeT3Small,
					PrivateIpAddress: aws.String("10.0.0.2"),
					PublicDnsName:    aws.String("ec2-2.compute.amazonaws.com"),
					PublicIpAddress:  aws.String("1.2.3.2"),
				},
			},
		}},
	}, nil)

	client.EXPECT().TerminateInstances(gomock.Any(), gomock.Any()).Return(&ec2.TerminateInstancesOutput{}, nil)
	client.EXPECT().DeleteSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.DeleteSecurityGroupOutput{}, nil)
	client.EXPECT().DeleteKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.DeleteKeyPairOutput{}, nil)

	cfg := config.New(config.WithPollPeriod(time.Millisecond))

	dispatched := make(map[string]bool)

	b := fleet.NewBuilder(client, cfg, fleet.WithDialer(fakeDialer{}))
	b.AddSet("server", 2, fleet.MachineSetup{
		InstanceType: "t3.small",
		ImageID:      "ami-1",
		Setup: func(ctx context.Context, session sshclient.Session, machine ec2fleet.Machine) error {
			dispatched[machine.InstanceID] = true
			return nil
		},
	})

	var delivered map[string][]fleet.Machine

	err := b.Run(context.Background(), func(machines map[string][]fleet.Machine) error {
		delivered = machines
		return nil
	})

	require.NoError(t, err)

	require.Len(t, delivered, 1)
	require.Len(t, delivered["server"], 2)

	for _, m := range delivered["server"] {
		assert.NotEmpty(t, m.InstanceID)
		assert.NotEmpty(t, m.InstanceType)
		assert.NotEmpty(t, m.PrivateIP)
		assert.NotEmpty(t, m.PublicDNS)
		assert.NotEmpty(t, m.PublicIP)
		assert.True(t, dispatched[m.InstanceID], "setup never ran for %s", m.InstanceID)
	}

	assert.True(t, dispatched["i-1"])
	assert.True(t, dispatched["i-2"])
}

// TestRunDeliversPartialFleetWhenOneSetFailsTerminally checks that a spot
// request settling into a terminal state for one set doesn't stop the
// other set from being dispatched and handed to the callback: only the
// failed set is missing, and its failure surfaces as a PlacementError
// after teardown completes.
func TestRunDeliversPartialFleetWhenOneSetFailsTerminally(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockClient(ctrl)

	client.EXPECT().CreateSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.CreateSecurityGroupOutput{
		GroupId: aws.String("sg-1"),
	}, nil)
	client.EXPECT().AuthorizeSecurityGroupIngress(gomock.Any(), gomock.Any()).Return(&ec2.AuthorizeSecurityGroupIngressOutput{}, nil)
	client.EXPECT().CreateKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.CreateKeyPairOutput{
		KeyMaterial: aws.String("fake-key-material"),
	}, nil)

	client.EXPECT().RequestSpotInstances(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, in *ec2.RequestSpotInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RequestSpotInstancesOutput, error) {
			switch in.LaunchSpecification.InstanceType {
			case types.InstanceType("t3.small"):
				return &ec2.RequestSpotInstancesOutput{
					SpotInstanceRequests: []types.SpotInstanceRequest{
						{SpotInstanceRequestId: aws.String("sir-server")},
					},
				}, nil
			default:
				return &ec2.RequestSpotInstancesOutput{
					SpotInstanceRequests: []types.SpotInstanceRequest{
						{SpotInstanceRequestId: aws.String("sir-client")},
					},
				}, nil
			}
		}).Times(2)

	client.EXPECT().DescribeSpotInstanceRequests(gomock.Any(), gomock.Any()).Return(&ec2.DescribeSpotInstanceRequestsOutput{
		SpotInstanceRequests: []types.SpotInstanceRequest{
			{SpotInstanceRequestId: aws.String("sir-server"), InstanceId: aws.String("i-server"), State: types.SpotInstanceStateActive},
			{SpotInstanceRequestId: aws.String("sir-client"), State: types.SpotInstanceStateCancelled},
		},
	}, nil)

	client.EXPECT().CancelSpotInstanceRequests(gomock.Any(), gomock.Any()).Return(&ec2.CancelSpotInstanceRequestsOutput{}, nil)

	client.EXPECT().DescribeInstances(gomock.Any(), gomock.Any()).Return(&ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{
			Instances: []types.Instance{
				{
					InstanceId:       aws.String("i-server"),
					InstanceType:     types.InstanceTypeT3Small,
					PrivateIpAddress: aws.String("10.0.0.1"),
					PublicDnsName:    aws.String("ec2-1.compute.amazonaws.com"),
					PublicIpAddress:  aws.String("1.2.3.1"),
				},
			},
		}},
	}, nil)

	client.EXPECT().TerminateInstances(gomock.Any(), gomock.Any()).Return(&ec2.TerminateInstancesOutput{}, nil)
	client.EXPECT().DeleteSecurityGroup(gomock.Any(), gomock.Any()).Return(&ec2.DeleteSecurityGroupOutput{}, nil)
	client.EXPECT().DeleteKeyPair(gomock.Any(), gomock.Any()).Return(&ec2.DeleteKeyPairOutput{}, nil)

	cfg := config.New(config.WithPollPeriod(time.Millisecond))

	b := fleet.NewBuilder(client, cfg, fleet.WithDialer(fakeDialer{}))
	b.AddSet("server", 1, fleet.MachineSetup{InstanceType: "t3.small", ImageID: "ami-1", Setup: testSetup().Setup})
	b.AddSet("client", 1, fleet.MachineSetup{InstanceType: "t3.large", ImageID: "ami-1", Setup: testSetup().Setup})

	var delivered map[string][]fleet.Machine

	err := b.Run(context.Background(), func(machines map[string][]fleet.Machine) error {
		delivered = machines
		return nil
	})

	require.Error(t, err)

	var placementErr *fleeterrors.PlacementError
	require.ErrorAs(t, err, &placementErr)
	assert.Equal(t, "client", placementErr.SetName)

	require.Len(t, delivered, 1)
	require.Len(t, delivered["server"], 1)
	_, ok := delivered["client"]
	assert.False(t, ok)
}
