package main

import (
	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/repository"
)

type stopPartOptions struct {
	dateTimeFlags
	override bool
}

func newStopPartCmd(root *rootFlags) *cobra.Command {
	opts := stopPartOptions{}

	cmd := &cobra.Command{
		Use:   "stop-part <part>...",
		Short: "Close the validity interval of the given parts",
		Args:  cobra.MinimumNArgs(1),
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
			return repository.StopParts(cmd.Context(), app.store, args, at, opts.override, app.log)
		},
	}

	addDateTimeFlags(cmd, &opts.dateTimeFlags)
	cmd.Flags().BoolVar(&opts.override, "override", false, "Move the stop time of an already stopped part")

	return cmd
}
