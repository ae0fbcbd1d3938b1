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

package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/ec2fleet"
	"github.com/eschercloudai/burst/pkg/fleeterrors"
	"github.com/eschercloudai/burst/pkg/sshclient"
)

// terminationBudget bounds the guaranteed-teardown pass. It runs on its
// own context, detached from the caller's, so a canceled or expired run
// context never prevents instances from being terminated.
const terminationBudget = 2 * time.Minute

// Builder accumulates machine sets and places, provisions and tears down
// a fleet for them in one Run call.
type Builder struct {
	client      ec2fleet.Client
	cfg         *config.Config
	descriptors map[string]setDescriptor
	order       []string
	maxDuration time.Duration
	dialer      sshclient.Dialer

	// accessKeyPath is set by Run once access provisioning succeeds, and
	// read by the dispatcher to authenticate each SSH session.
	accessKeyPath string
}

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithDialer overrides the SSH dialer used to reach each machine during
// setup dispatch. Production callers never need this: it exists so tests
// can substitute a fake that never touches the network.
func WithDialer(d sshclient.Dialer) Option {
	return func(b *Builder) {
		b.dialer = d
	}
}

// NewBuilder returns an empty Builder bound to client and cfg.
func NewBuilder(client ec2fleet.Client, cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		client:      client,
		cfg:         cfg,
		descriptors: make(map[string]setDescriptor),
		dialer:      sshclient.NewDialer(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// AddSet registers a machine set. Calling AddSet twice with the same name
// replaces the earlier descriptor, matching the original source's map
// semantics. A count of zero or less is a caller error: it's rejected
// immediately rather than silently placed as an empty spot request, the
// same way the teacher's flag/template registration panics on a
// programmer error it can't recover from.
func (b *Builder) AddSet(name string, count int, setup MachineSetup) *Builder {
	if count <= 0 {
		panic(fmt.Sprintf("fleet: AddSet(%q, %d, ...): count must be positive", name, count))
	}

	if _, exists := b.descriptors[name]; !exists {
		b.order = append(b.order, name)
	}

	b.descriptors[name] = setDescriptor{setup: setup, count: int32(count)}

	return b
}

// SetMaxDuration bounds every phase of the run that uses its context:
// access provisioning, placement, polling and setup dispatch. The callback
// receives no context and is not interrupted, and the guaranteed
// termination pass runs on its own budget.
func (b *Builder) SetMaxDuration(d time.Duration) *Builder {
	b.maxDuration = d
	return b
}

// Run places spot capacity for every registered set, waits for it to
// become reachable, dispatches each set's setup routine over SSH, invokes
// callback with the resulting machines keyed by set name, and then
// unconditionally terminates everything it created — regardless of which
// of those steps failed.
//
// Unlike the original source, Run takes an explicit context so external
// cancellation can reach every phase up to, but not including, the final
// termination pass, which always runs to completion on its own budget.
func (b *Builder) Run(ctx context.Context, callback func(map[string][]Machine) error) error {
	log := logr.FromContextOrDiscard(ctx)

	if b.maxDuration > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, b.maxDuration)
		defer cancel()
	}

	access, err := ec2fleet.ProvisionAccess(ctx, b.client, b.cfg)
	if err != nil {
		return &fleeterrors.AccessProvisioningError{Err: err}
	}

	defer func() {
		if cerr := access.Close(); cerr != nil {
			log.Error(cerr, "failed to remove temporary key file")
		}
	}()

	b.accessKeyPath = access.KeyPath

	ids := ec2fleet.NewIDMap()

	runErr := b.run(ctx, access, ids, callback)

	termCtx, cancel := context.WithTimeout(context.Background(), terminationBudget)
	defer cancel()

	termErr := ec2fleet.Terminate(termCtx, b.client, b.cfg, ids.IDs(), access)
	if termErr != nil {
		termErr = &fleeterrors.TerminationError{Err: termErr}
	}

	return errors.Join(runErr, termErr)
}

// run is Run's body minus the guaranteed termination wrapper, factored out
// so Run can always reach the termination pass regardless of where run
// returns.
func (b *Builder) run(ctx context.Context, access *ec2fleet.AccessContext, ids *ec2fleet.IDMap, callback func(map[string][]Machine) error) error {
	placements := make([]ec2fleet.PlacementRequest, 0, len(b.order))

	for _, name := range b.order {
		d := b.descriptors[name]

		placements = append(placements, ec2fleet.PlacementRequest{
			SetName:      name,
			InstanceType: d.setup.InstanceType,
			ImageID:      d.setup.ImageID,
			Count:        d.count,
		})
	}

	if err := ec2fleet.PlaceSpotRequests(ctx, b.client, access, placements, ids); err != nil {
		return &fleeterrors.PlacementError{Err: err}
	}

	spotRequestIDs := ids.IDs()

	failedSets, err := ec2fleet.PollSpotRequestsUntilSatisfied(ctx, b.client, b.cfg, ids)
	if err != nil {
		_ = ec2fleet.CancelSpotRequests(ctx, b.client, spotRequestIDs)
		return &fleeterrors.PollingError{Err: err}
	}

	if err := ec2fleet.CancelSpotRequests(ctx, b.client, spotRequestIDs); err != nil {
		return &fleeterrors.PollingError{Err: err}
	}

	machines, err := ec2fleet.PollInstancesUntilComplete(ctx, b.client, b.cfg, ids)
	if err != nil {
		return &fleeterrors.PollingError{Err: err}
	}

	// Sets named in failedSets never placed an instance (their spot
	// requests settled into a terminal state before satisfaction), so they
	// are simply absent from bySet: dispatch and the callback still run
	// for every set that did succeed.
	bySet := make(map[string][]Machine, len(b.order))
	for _, m := range machines {
		bySet[m.SetName] = append(bySet[m.SetName], m)
	}

	placementErr := placementErrors(failedSets)

	if err := b.dispatchSetup(ctx, bySet); err != nil {
		return errors.Join(placementErr, err)
	}

	if err := callback(bySet); err != nil {
		return errors.Join(placementErr, &fleeterrors.UserCallbackError{Err: err})
	}

	return placementErr
}

// placementErrors turns the set names a poll reported as terminally failed
// into a joined *fleeterrors.PlacementError per set, or nil if none failed.
func placementErrors(setNames []string) error {
	if len(setNames) == 0 {
		return nil
	}

	errs := make([]error, 0, len(setNames))

	for _, name := range setNames {
		errs = append(errs, &fleeterrors.PlacementError{
			SetName: name,
			Err:     errors.New("spot request never reached active state"),
		})
	}

	return errors.Join(errs...)
}

// setupFor looks up the registered setup routine for a set name, used by
// the dispatcher.
func (b *Builder) setupFor(name string) (MachineSetup, error) {
	d, ok := b.descriptors[name]
	if !ok {
		return MachineSetup{}, fmt.Errorf("no descriptor registered for set %q", name)
	}

	return d.setup, nil
}
