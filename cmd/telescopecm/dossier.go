package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/dossier"
)

type dossierOptions struct {
	dateTimeFlags
	exact bool
	csv   bool
	notes bool
}

func newDossierCmd(root *rootFlags) *cobra.Command {
	opts := dossierOptions{}

	cmd := &cobra.Command{
		Use:   "dossier <part>...",
		Short: "Show part records, realized ports and notes",
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

			snap := active.NewSnapshot(app.store, app.log, at)
			dossiers, err := dossier.Build(cmd.Context(), snap, args, opts.exact)
			if err != nil {
				return err
			}

			if opts.csv {
				out, err := dossier.RenderPartsCSV(dossiers)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), dossier.RenderParts(dossiers))
			}

			if opts.notes {
				fmt.Fprintln(cmd.OutOrStdout(), dossier.RenderNotes(dossiers))
			}
			return nil
		},
	}

	addDateTimeFlags(cmd, &opts.dateTimeFlags)
	cmd.Flags().BoolVar(&opts.exact, "exact", false, "Match part numbers exactly instead of by prefix")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "Emit CSV instead of a table")
	cmd.Flags().BoolVar(&opts.notes, "notes", false, "Also show the notes attached to each part")

	return cmd
}
