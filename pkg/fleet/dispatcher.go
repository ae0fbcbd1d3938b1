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
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/eschercloudai/burst/pkg/fleeterrors"
	"github.com/eschercloudai/burst/pkg/metrics"
)

// dispatchSetup fans out one goroutine per machine, across every set,
// opening an SSH session and running that set's setup routine against it.
// All machines run concurrently; the first setup failure cancels the
// others via the errgroup's derived context.
func (b *Builder) dispatchSetup(ctx context.Context, bySet map[string][]Machine) error {
	log := logr.FromContextOrDiscard(ctx)

	g, gctx := errgroup.WithContext(ctx)

	for setName, machines := range bySet {
		setup, err := b.setupFor(setName)
		if err != nil {
			return &fleeterrors.SetupError{SetName: setName, Err: err}
		}

		for _, machine := range machines {
			setName, setup, machine := setName, setup, machine

			g.Go(func() error {
				return b.dispatchOne(gctx, setName, setup, machine, log)
			})
		}
	}

	return g.Wait()
}

// dispatchOne opens an SSH session against one machine, runs its set's
// setup routine, and closes the session on every exit path.
func (b *Builder) dispatchOne(ctx context.Context, setName string, setup MachineSetup, machine Machine, log logr.Logger) error {
	start := time.Now()
	defer func() {
		metrics.DispatchDuration.WithLabelValues(setName).Observe(time.Since(start).Seconds())
	}()

	// spec.md §4.E dials the public IP directly; phase D2 already requires
	// every delivered machine to have one (machineComplete), so there's no
	// fallback to make here.
	host := machine.PublicIP

	session, err := b.dialer.Dial(ctx, b.cfg, host, b.accessKeyPath)
	if err != nil {
		return &fleeterrors.SetupError{SetName: setName, Err: err}
	}

	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Error(cerr, "failed to close ssh session", "host", host)
		}
	}()

	if err := setup.Setup(ctx, session, machine); err != nil {
		return &fleeterrors.SetupError{SetName: setName, Err: err}
	}

	return nil
}
