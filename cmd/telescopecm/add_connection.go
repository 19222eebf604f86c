package main

import (
	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/model"
	"github.com/arrayops/telescopecm/internal/repository"
)

type connectionOptions struct {
	dateTimeFlags
	up       string
	upPort   string
	down     string
	downPort string
}

func addConnectionFlags(cmd *cobra.Command, opts *connectionOptions) {
	cmd.Flags().StringVar(&opts.up, "up", "", "Upstream part number")
	cmd.Flags().StringVar(&opts.upPort, "up-port", "", "Upstream output port")
	cmd.Flags().StringVar(&opts.down, "down", "", "Downstream part number")
	cmd.Flags().StringVar(&opts.downPort, "down-port", "", "Downstream input port")
	cmd.MarkFlagRequired("up")        //nolint:errcheck
	cmd.MarkFlagRequired("up-port")   //nolint:errcheck
	cmd.MarkFlagRequired("down")      //nolint:errcheck
	cmd.MarkFlagRequired("down-port") //nolint:errcheck
}

func newAddConnectionCmd(root *rootFlags) *cobra.Command {
	opts := connectionOptions{}

	cmd := &cobra.Command{
		Use:   "add-connection",
		Short: "Connect an upstream output port to a downstream input port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer app.close()

			at, err := opts.parse(app.log)
			if err != nil {
				return err
			}

			conn := model.NewConnection(opts.up, opts.upPort, opts.down, opts.downPort, at)
			return repository.AddConnections(cmd.Context(), app.store, []model.Connection{conn}, app.log)
		},
	}

	addDateTimeFlags(cmd, &opts.dateTimeFlags)
	addConnectionFlags(cmd, &opts)

	return cmd
}
