package command

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eschercloudai/burst/pkg/command/util"
	"github.com/eschercloudai/burst/pkg/config"
	"github.com/eschercloudai/burst/pkg/constants"
	"github.com/eschercloudai/burst/pkg/ec2fleet"
	"github.com/eschercloudai/burst/pkg/fleet"
	"github.com/eschercloudai/burst/pkg/sshclient"
)

// newRootCommand returns the root command and all its subordinates. This
// is a thin demonstration CLI: the actual orchestration lives in
// pkg/fleet, and any real caller is expected to use that package directly
// rather than shell out to this binary.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.Application,
		Short: "Burst EC2 spot fleet orchestrator.",
		Long:  "Burst EC2 spot fleet orchestrator.",
	}

	commands := []*cobra.Command{
		newVersionCommand(),
		newRunCommand(),
	}

	cmd.AddCommand(commands...)

	return cmd
}

// newVersionCommand returns a version command that prints out application
// and versioning information.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print this command's version.",
		Long:  "Print this command's version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(constants.VersionString())
		},
	}
}

// runOptions defines the set of flags needed to place, provision and tear
// down a single machine set.
type runOptions struct {
	region       string
	sshUser      string
	instanceType string
	imageID      string
	count        int
	command      string
	maxDuration  time.Duration
}

// addFlags registers run command options flags with the specified cobra command.
func (o *runOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.region, "region", config.DefaultRegion, "AWS region to place the fleet in.")
	cmd.Flags().StringVar(&o.sshUser, "ssh-user", config.DefaultSSHUser, "Remote user to authenticate as.")
	cmd.Flags().StringVar(&o.instanceType, "instance-type", "t3.small", "EC2 instance type to request.")
	cmd.Flags().StringVar(&o.imageID, "image", "", "AMI to boot.")
	cmd.Flags().IntVar(&o.count, "count", 1, "Number of instances to place.")
	cmd.Flags().StringVar(&o.command, "command", "true", "Command to run on every instance once reachable.")
	cmd.Flags().DurationVar(&o.maxDuration, "max-duration", 0, "Overall run timeout, zero for none.")

	if err := cmd.MarkFlagRequired("image"); err != nil {
		panic(err)
	}
}

// newRunCommand creates a command that places a single machine set, runs
// a command against every member over SSH, prints each machine's private
// IP, and then tears the fleet down.
func newRunCommand() *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Place a fleet, run a command on it, then terminate it.",
		Long:  "Place a fleet, run a command on it, then terminate it.",
		Example: util.TemplatedString(`
			# Place two t3.small instances and run "uptime" on each.
			{{.Application}} run --image ami-0123456789abcdef0 --count 2 --command uptime
		`, newDynamicTemplateOptions()),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context())
		},
	}

	o.addFlags(cmd)

	return cmd
}

// run wires up a logger, an EC2 client and a single-set Builder, then
// drives the fleet to completion.
func (o *runOptions) run(ctx context.Context) error {
	zl, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer func() {
		_ = zl.Sync()
	}()

	log := zapr.NewLogger(zl)
	ctx = logr.NewContext(ctx, log)

	cfg := config.New(
		config.WithRegion(o.region),
		config.WithSSHUser(o.sshUser),
	)

	client, err := ec2fleet.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create EC2 client: %w", err)
	}

	b := fleet.NewBuilder(client, cfg)

	if o.maxDuration > 0 {
		b.SetMaxDuration(o.maxDuration)
	}

	b.AddSet("default", o.count, fleet.MachineSetup{
		InstanceType: o.instanceType,
		ImageID:      o.imageID,
		Setup: func(ctx context.Context, session sshclient.Session, machine ec2fleet.Machine) error {
			out, err := session.Run(ctx, o.command)
			if err != nil {
				return err
			}

			log.Info("command completed", "host", machine.PrivateIP, "output", out)

			return nil
		},
	})

	return b.Run(ctx, func(machines map[string][]fleet.Machine) error {
		for _, m := range machines["default"] {
			fmt.Println(m.PrivateIP)
		}

		return nil
	})
}

// DynamicTemplateOptions allows some parameters to be passed into help text
// and that text to be templated so it will update automatically when the
// options do.
type DynamicTemplateOptions struct {
	// Application is the application name as defined by argv[0].
	Application string
}

// newDynamicTemplateOptions returns an initialized template options struct.
func newDynamicTemplateOptions() *DynamicTemplateOptions {
	return &DynamicTemplateOptions{
		Application: constants.Application,
	}
}

// Generate creates a hierarchy of cobra commands for the application. It
// can also be used to walk the structure and generate HTML documentation,
// for example.
func Generate() *cobra.Command {
	return newRootCommand()
}
