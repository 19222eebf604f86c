package main

import (
	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/repository"
)

func newUpdateAprioriCmd(root *rootFlags) *cobra.Command {
	opts := dateTimeFlags{}

	cmd := &cobra.Command{
		Use:   "update-apriori <antenna> <status>",
		Short: "Set a new apriori status, closing the previous interval",
		Args:  cobra.ExactArgs(2),
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
			return repository.UpdateApriori(cmd.Context(), app.store, args[0], args[1], at)
		},
	}

	addDateTimeFlags(cmd, &opts)

	return cmd
}
