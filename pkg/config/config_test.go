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

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eschercloudai/burst/pkg/config"
)

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.New()

	assert.Equal(t, config.DefaultRegion, cfg.Region)
	assert.Equal(t, config.DefaultSSHUser, cfg.SSHUser)
	assert.Equal(t, config.DefaultInternalCIDR, cfg.InternalCIDR)
	assert.Zero(t, cfg.InstanceDescribeMaxAttempts)
}

func TestNewAppliesOptionsOverDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.New(
		config.WithRegion("eu-west-1"),
		config.WithSSHUser("ubuntu"),
		config.WithPollPeriod(5*time.Second),
		config.WithInstanceDescribeMaxAttempts(10),
		config.WithInternalCIDR("10.0.0.0/8"),
	)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "ubuntu", cfg.SSHUser)
	assert.Equal(t, 5*time.Second, cfg.PollPeriod)
	assert.Equal(t, 10, cfg.InstanceDescribeMaxAttempts)
	assert.Equal(t, "10.0.0.0/8", cfg.InternalCIDR)
}
