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
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/constants"
)

// AccessContext is the ephemeral security group, keypair and private-key
// temp file that permit SSH access to a fleet for the lifetime of one run.
type AccessContext struct {
	// SecurityGroupID is the id of the ephemeral security group.
	SecurityGroupID string

	// KeyName is the name of the ephemeral keypair.
	KeyName string

	// KeyPath is the path to a temp file holding the private key material.
	// It exists for the lifetime of the pipeline and is unlinked by Close.
	KeyPath string
}

// Close unlinks the private key temp file.  It does not delete the
// security group or keypair themselves — that's the Terminator's job,
// since it runs after instances (which reference them) are gone.
func (a *AccessContext) Close() error {
	if a.KeyPath == "" {
		return nil
	}

	if err := os.Remove(a.KeyPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// randomSuffix returns 10 random alphanumeric characters, used to name
// ephemeral security groups and keypairs so concurrent runs never collide.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// ProvisionAccess creates a security group and keypair scoped to a single
// fleet run, authorizes operator SSH and cross-VM traffic on the group,
// and writes the new keypair's private key material to a scoped temp file.
//
// Any sub-step failure aborts placement. Resources created before the
// failing step are not deleted: on error no AccessContext is returned, so
// Terminate never receives them and they remain in the account.
func ProvisionAccess(ctx context.Context, client Client, cfg *config.Config) (*AccessContext, error) {
	tracer := otel.GetTracerProvider().Tracer(constants.TracerName)

	ctx, span := tracer.Start(ctx, "ec2fleet.ProvisionAccess", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	groupName := fmt.Sprintf("%s_security_%s", constants.ResourcePrefix, randomSuffix())

	groupOut, err := client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(groupName),
		Description: aws.String("ephemeral access group for a burst fleet run"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create security groups: %w", err)
	}

	groupID := stringOrEmpty(groupOut.GroupId)

	ingress := []types.IpPermission{
		{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int32(22),
			ToPort:     aws.Int32(22),
			IpRanges: []types.IpRange{
				{CidrIp: aws.String("0.0.0.0/0"), Description: aws.String("operator SSH")},
			},
		},
		{
			IpProtocol: aws.String("-1"),
			FromPort:   aws.Int32(0),
			ToPort:     aws.Int32(65535),
			IpRanges: []types.IpRange{
				{CidrIp: aws.String(cfg.InternalCIDR), Description: aws.String("cross-VM traffic")},
			},
		},
	}

	if _, err := client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: ingress,
	}); err != nil {
		return nil, fmt.Errorf("failed to create security groups: %w", err)
	}

	keyName := fmt.Sprintf("%s_key_%s", constants.ResourcePrefix, randomSuffix())

	keyOut, err := client.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName: aws.String(keyName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate new key pair: %w", err)
	}

	keyPath, err := writeKeyMaterial(keyName, stringOrEmpty(keyOut.KeyMaterial))
	if err != nil {
		return nil, fmt.Errorf("failed to generate new key pair: %w", err)
	}

	return &AccessContext{
		SecurityGroupID: groupID,
		KeyName:         keyName,
		KeyPath:         keyPath,
	}, nil
}

// writeKeyMaterial persists private key material to a temp file scoped to
// this process, with permissions an SSH client will accept.
func writeKeyMaterial(keyName, material string) (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("%s-*.pem", keyName))
	if err != nil {
		return "", err
	}

	defer f.Close()

	if err := f.Chmod(0o600); err != nil {
		return "", err
	}

	if _, err := f.WriteString(material); err != nil {
		return "", err
	}

	return f.Name(), nil
}
