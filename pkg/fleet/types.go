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

// Package fleet is the orchestrator: it wires together access provisioning,
// spot placement, readiness polling, SSH setup dispatch and guaranteed
// termination into the single Builder.Run entry point.
package fleet

import (
	"context"

	"github.com/eschercloudai/burst/pkg/ec2fleet"
	"github.com/eschercloudai/burst/pkg/sshclient"
)

// SetupFunc runs once a machine's SSH session is open, before the fleet's
// callback is invoked. It receives the machine's own describe-complete
// record alongside the session, so setup can be parameterized by, say,
// the machine's private IP.
type SetupFunc func(ctx context.Context, session sshclient.Session, machine ec2fleet.Machine) error

// MachineSetup is everything needed to place and provision one member of a
// machine set.
type MachineSetup struct {
	// InstanceType is the EC2 instance type to request, e.g. "t3.small".
	InstanceType string

	// ImageID is the AMI to boot.
	ImageID string

	// Setup runs against every machine in the set once it's reachable.
	Setup SetupFunc
}

// setDescriptor pairs a MachineSetup with how many instances of it to
// place, mirroring the original source's descriptors map.
type setDescriptor struct {
	setup MachineSetup
	count int32
}

// Machine is re-exported so callers of this package never need to import
// pkg/ec2fleet directly.
type Machine = ec2fleet.Machine
