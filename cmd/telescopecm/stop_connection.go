package main

import (
	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/model"
	"github.com/arrayops/telescopecm/internal/repository"
)

func newStopConnectionCmd(root *rootFlags) *cobra.Command {
	opts := connectionOptions{}

	cmd := &cobra.Command{
		Use:   "stop-connection",
		Short: "Close the open connection between two ports",
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
			return repository.StopConnections(cmd.Context(), app.store, []model.Connection{conn}, at, app.log)
		},
	}

	addDateTimeFlags(cmd, &opts.dateTimeFlags)
	addConnectionFlags(cmd, &opts)

	return cmd
}
