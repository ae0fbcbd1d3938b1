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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/ec2fleet"
	"github.com/eschercloudai/burst/pkg/sshclient"
	"github.com/eschercloudai/burst/pkg/sshclient/mock"
)

func machinesFor(setName string, n int) []Machine {
	out := make([]Machine, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Machine{
			SetName:      setName,
			InstanceID:   setName,
			InstanceType: "t3.small",
			PrivateIP:    "10.0.0.1",
			PublicDNS:    "ec2-host.compute.amazonaws.com",
			PublicIP:     "1.2.3.4",
		})
	}
	return out
}

func TestDispatchSetupRunsEveryMachineConcurrently(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dialer := mock.NewMockDialer(ctrl)

	bySet := map[string][]Machine{
		"server": machinesFor("server", 1),
		"client": machinesFor("client", 3),
	}

	total := len(bySet["server"]) + len(bySet["client"])

	dialer.EXPECT().Dial(gomock.Any(), gomock.Any(), "1.2.3.4", gomock.Any()).
		Times(total).
		DoAndReturn(func(ctx context.Context, cfg *config.Config, host, keyPath string) (sshclient.Session, error) {
			session := mock.NewMockSession(ctrl)
			session.EXPECT().Run(gomock.Any(), gomock.Any()).Return("ok", nil)
			session.EXPECT().Close().Return(nil)
			return session, nil
		})

	var (
		mu  sync.Mutex
		ran = map[string]int{}
	)

	setup := func(setName string) MachineSetup {
		return MachineSetup{
			InstanceType: "t3.small",
			ImageID:      "ami-1",
			Setup: func(ctx context.Context, session sshclient.Session, machine ec2fleet.Machine) error {
				if _, err := session.Run(ctx, "true"); err != nil {
					return err
				}

				mu.Lock()
				ran[setName]++
				mu.Unlock()

				return nil
			},
		}
	}

	b := NewBuilder(nil, config.New(), WithDialer(dialer))
	b.descriptors["server"] = setDescriptor{setup: setup("server"), count: 1}
	b.descriptors["client"] = setDescriptor{setup: setup("client"), count: 3}
	b.accessKeyPath = "/tmp/key.pem"

	require.NoError(t, b.dispatchSetup(context.Background(), bySet))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, ran["server"])
	assert.Equal(t, 3, ran["client"])
}

func TestDispatchSetupAbortsSiblingsOnFirstFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dialer := mock.NewMockDialer(ctrl)

	bySet := map[string][]Machine{
		"server": machinesFor("server", 1),
		"client": machinesFor("client", 1),
	}

	var dials int32

	// The first dial fails; the sibling blocks until that failure cancels
	// its context, so dispatchSetup only returns if the sibling was aborted.
	dialer.EXPECT().Dial(gomock.Any(), gomock.Any(), "1.2.3.4", gomock.Any()).
		Times(2).
		DoAndReturn(func(ctx context.Context, cfg *config.Config, host, keyPath string) (sshclient.Session, error) {
			if atomic.AddInt32(&dials, 1) == 1 {
				return nil, errors.New("connection refused")
			}

			<-ctx.Done()

			return nil, ctx.Err()
		})

	setup := MachineSetup{
		InstanceType: "t3.small",
		ImageID:      "ami-1",
		Setup: func(ctx context.Context, session sshclient.Session, machine ec2fleet.Machine) error {
			return nil
		},
	}

	b := NewBuilder(nil, config.New(), WithDialer(dialer))
	b.descriptors["server"] = setDescriptor{setup: setup, count: 1}
	b.descriptors["client"] = setDescriptor{setup: setup, count: 1}
	b.accessKeyPath = "/tmp/key.pem"

	err := b.dispatchSetup(context.Background(), bySet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
