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

// Package fleeterrors holds the typed error kinds a fleet run can fail
// with. They live in their own package, rather than alongside the
// orchestrator or the SSH client, so both can return them without an
// import cycle.
package fleeterrors

import "fmt"

// AccessProvisioningError wraps a failure creating the security group or
// keypair a run depends on.
type AccessProvisioningError struct {
	Err error
}

func (e *AccessProvisioningError) Error() string {
	return fmt.Sprintf("access provisioning failed: %v", e.Err)
}

func (e *AccessProvisioningError) Unwrap() error { return e.Err }

// PlacementError wraps a failure requesting spot capacity for one or more
// machine sets.
type PlacementError struct {
	SetName string
	Err     error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placement failed for set %q: %v", e.SetName, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// PollingError wraps a failure waiting for spot requests or instances to
// reach readiness.
type PollingError struct {
	Err error
}

func (e *PollingError) Error() string {
	return fmt.Sprintf("polling failed: %v", e.Err)
}

func (e *PollingError) Unwrap() error { return e.Err }

// ConnectError wraps a failure establishing the TCP/SSH transport to a
// host within the configured connect budget.
type ConnectError struct {
	Host string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AuthError wraps a failure authenticating an SSH session, e.g. a
// malformed or unreadable private key.
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to authenticate to %s: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ExecError wraps a failure running a command over an established SSH
// session, including a non-zero exit status.
type ExecError struct {
	Host    string
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("command %q on %s failed: %v", e.Command, e.Host, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// SetupError wraps a failure dispatching a machine set's setup: opening
// the SSH session to one of its machines, or running its setup routine.
type SetupError struct {
	SetName string
	Err     error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup routine for %q failed: %v", e.SetName, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// UserCallbackError wraps a failure returned by the caller's own callback,
// invoked once every set has finished setup.
type UserCallbackError struct {
	Err error
}

func (e *UserCallbackError) Error() string {
	return fmt.Sprintf("main routine failed: %v", e.Err)
}

func (e *UserCallbackError) Unwrap() error { return e.Err }

// TerminationError wraps a failure tearing down instances, security
// groups or keypairs at the end of a run.
type TerminationError struct {
	Err error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("failed to terminate instances: %v", e.Err)
}

func (e *TerminationError) Unwrap() error { return e.Err }
