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

// Package sshclient opens a session against a freshly booted spot instance
// and runs commands on it.  Authentication is always by the private key
// file the access provisioner minted for this run: the key was never added
// to any agent, so agent auth is never an option here, unlike the original
// source this module replaces.
package sshclient

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/fleeterrors"
	"github.com/eschercloudai/burst/pkg/metrics"
)

//go:generate mockgen -source=sshclient.go -destination=mock/dialer.go -package=mock

// Session is a connected SSH session against a single host, able to run
// commands one at a time.
type Session interface {
	Run(ctx context.Context, cmd string) (string, error)
	Close() error
}

// Dialer opens a Session against a host. Dial (the package function) is
// the production implementation; NewDialer wraps it so the dispatcher can
// depend on the interface instead of the function, and tests can
// substitute a fake that never touches the network.
type Dialer interface {
	Dial(ctx context.Context, cfg *config.Config, host, keyPath string) (Session, error)
}

type defaultDialer struct{}

// NewDialer returns the production Dialer, backed by Dial.
func NewDialer() Dialer {
	return defaultDialer{}
}

func (defaultDialer) Dial(ctx context.Context, cfg *config.Config, host, keyPath string) (Session, error) {
	return Dial(ctx, cfg, host, keyPath)
}

// clientSession is the production Session, backed by a real *ssh.Client.
type clientSession struct {
	client *ssh.Client
	host   string
}

// Dial connects to host:22 as cfg.SSHUser, authenticating with the private
// key at keyPath. It retries the underlying TCP connect every
// cfg.SSHConnectRetryPeriod, bounding each attempt to
// cfg.SSHConnectDialTimeout, until cfg.SSHConnectBudget elapses — the spot
// instance's sshd is frequently not yet accepting connections by the time
// phase D2 declares it describe-complete.
func Dial(ctx context.Context, cfg *config.Config, host, keyPath string) (Session, error) {
	signer, err := loadSigner(keyPath)
	if err != nil {
		return nil, &fleeterrors.AuthError{Host: host, Err: err}
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.SSHUser,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.SSHConnectDialTimeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", config.DefaultSSHPort))

	deadline := time.Now().Add(cfg.SSHConnectBudget)

	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, &fleeterrors.ConnectError{Host: host, Err: ctx.Err()}
		}

		client, err := ssh.Dial("tcp", addr, clientCfg)
		if err == nil {
			return &clientSession{client: client, host: host}, nil
		}

		lastErr = err

		if time.Now().After(deadline) {
			return nil, &fleeterrors.ConnectError{Host: host, Err: lastErr}
		}

		metrics.SSHConnectRetries.Inc()

		select {
		case <-ctx.Done():
			return nil, &fleeterrors.ConnectError{Host: host, Err: ctx.Err()}
		case <-time.After(cfg.SSHConnectRetryPeriod):
		}
	}
}

// Run executes cmd on the remote host over a fresh channel and returns its
// stdout; stderr is not captured. Every call opens and closes its own channel: the
// underlying *ssh.Client is safe to reuse, but a *ssh.Session is not.
func (s *clientSession) Run(ctx context.Context, cmd string) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", &fleeterrors.ExecError{Host: s.host, Command: cmd, Err: err}
	}

	defer session.Close()

	var stdout bytes.Buffer

	session.Stdout = &stdout

	done := make(chan error, 1)

	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", &fleeterrors.ExecError{Host: s.host, Command: cmd, Err: ctx.Err()}
	case err := <-done:
		if err != nil {
			return stdout.String(), &fleeterrors.ExecError{Host: s.host, Command: cmd, Err: err}
		}

		return stdout.String(), nil
	}
}

// Close releases the underlying connection.
func (s *clientSession) Close() error {
	return s.client.Close()
}

// loadSigner reads and parses a private key file with no passphrase, the
// only form the access provisioner ever writes.
func loadSigner(keyPath string) (ssh.Signer, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	return ssh.ParsePrivateKey(data)
}
