package main

import (
	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/repository"
)

type addInfoOptions struct {
	dateTimeFlags
	comment   string
	reference string
}

func newAddInfoCmd(root *rootFlags) *cobra.Command {
	opts := addInfoOptions{}

	cmd := &cobra.Command{
		Use:   "add-info <part>",
		Short: "Attach a timestamped note to a part",
		Args:  cobra.ExactArgs(1),
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
			return repository.AddInfo(cmd.Context(), app.store, args[0], at, opts.comment, opts.reference)
		},
	}

	addDateTimeFlags(cmd, &opts.dateTimeFlags)
	cmd.Flags().StringVar(&opts.comment, "comment", "", "Note text")
	cmd.Flags().StringVar(&opts.reference, "reference", "", "Optional reference (ticket, document)")
	cmd.MarkFlagRequired("comment") //nolint:errcheck

	return cmd
}
