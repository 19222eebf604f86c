package main

import (
	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/model"
	"github.com/arrayops/telescopecm/internal/repository"
)

type addPartOptions struct {
	dateTimeFlags
	partType string
	mfg      string
}

func newAddPartCmd(root *rootFlags) *cobra.Command {
	opts := addPartOptions{}

	cmd := &cobra.Command{
		Use:   "add-part <part>...",
		Short: "Add parts, restarting any that were previously stopped",
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

			parts := make([]model.Part, 0, len(args))
			for _, pn := range args {
				parts = append(parts, model.NewPart(pn, opts.partType, opts.mfg, at))
			}
			return repository.AddParts(cmd.Context(), app.store, parts, app.log)
		},
	}

	addDateTimeFlags(cmd, &opts.dateTimeFlags)
	cmd.Flags().StringVar(&opts.partType, "type", "", "Part type (e.g. station, antenna, feed, snap)")
	cmd.Flags().StringVar(&opts.mfg, "mfg", "", "Manufacturer number")
	cmd.MarkFlagRequired("type") //nolint:errcheck

	return cmd
}
