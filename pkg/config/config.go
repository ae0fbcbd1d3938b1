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

// Package config holds the small set of tunables the fleet orchestrator
// needs that the original source hardcoded.  There is deliberately no file
// format here: per spec, credentials and region come only from the
// environment, never a config file.
package config

import "time"

const (
	// DefaultRegion is the only region this revision targets.
	DefaultRegion = "us-east-1"

	// DefaultSSHUser is the remote user every spot instance is accessed as.
	DefaultSSHUser = "ec2-user"

	// DefaultSSHPort is the port every SSH connection is made to.
	DefaultSSHPort = 22

	// DefaultInternalCIDR is the provider's internal VPC range, opened up
	// for cross-VM traffic within a fleet.
	DefaultInternalCIDR = "172.31.0.0/16"
)

// Config carries every tunable of the fleet lifecycle.  Defaults are only
// applied by New; a zero value Config has none of them set.
type Config struct {
	// Region is the AWS region new fleets are placed in.
	Region string

	// SSHUser is the remote user used to authenticate over SSH.
	SSHUser string

	// SSHConnectDialTimeout bounds a single TCP connect attempt.
	SSHConnectDialTimeout time.Duration

	// SSHConnectRetryPeriod is the pause between failed TCP connect attempts.
	SSHConnectRetryPeriod time.Duration

	// SSHConnectBudget is the total wall-clock time allowed to establish a
	// session before giving up with a ConnectError.
	SSHConnectBudget time.Duration

	// PollPeriod is the pause between describe-spot-instance-requests and
	// describe-instances calls while waiting for quiescence.
	PollPeriod time.Duration

	// InstanceDescribeMaxAttempts caps phase D2's describe-and-retry loop.
	// Zero means unbounded, matching the original source's behavior
	// exactly (see SPEC_FULL.md's note on Open Question #1).
	InstanceDescribeMaxAttempts int

	// InternalCIDR is authorized for all-ports ingress between fleet
	// members, in addition to TCP/22 from the world.
	InternalCIDR string
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithRegion overrides the target AWS region.
func WithRegion(region string) Option {
	return func(c *Config) { c.Region = region }
}

// WithSSHUser overrides the SSH login user.
func WithSSHUser(user string) Option {
	return func(c *Config) { c.SSHUser = user }
}

// WithPollPeriod overrides the delay between D1/D2 poll iterations.
func WithPollPeriod(period time.Duration) Option {
	return func(c *Config) { c.PollPeriod = period }
}

// WithInstanceDescribeMaxAttempts bounds phase D2's retry loop, turning an
// unreachable completeness condition (e.g. instances with no public IP)
// into a PollingError instead of an infinite loop.
func WithInstanceDescribeMaxAttempts(n int) Option {
	return func(c *Config) { c.InstanceDescribeMaxAttempts = n }
}

// WithInternalCIDR overrides the cross-VM ingress CIDR.
func WithInternalCIDR(cidr string) Option {
	return func(c *Config) { c.InternalCIDR = cidr }
}

// New returns a fully resolved Config, defaults applied, options layered on
// top in order.
func New(options ...Option) *Config {
	c := &Config{
		Region:                DefaultRegion,
		SSHUser:               DefaultSSHUser,
		SSHConnectDialTimeout: 3 * time.Second,
		SSHConnectRetryPeriod: time.Second,
		SSHConnectBudget:      60 * time.Second,
		PollPeriod:            2 * time.Second,
		InternalCIDR:          DefaultInternalCIDR,
	}

	for _, o := range options {
		o(c)
	}

	return c
}
