package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/dossier"
)

func newAprioriCmd(root *rootFlags) *cobra.Command {
	opts := dateTimeFlags{}

	cmd := &cobra.Command{
		Use:   "apriori",
		Short: "Show the apriori statuses active at an instant",
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

			snap := active.NewSnapshot(app.store, app.log, at)
			if err := snap.LoadApriori(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), dossier.RenderApriori(snap))
			return nil
		},
	}

	addDateTimeFlags(cmd, &opts)

	return cmd
}
