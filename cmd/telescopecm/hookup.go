package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/dossier"
	"github.com/arrayops/telescopecm/internal/hookup"
	"github.com/arrayops/telescopecm/internal/model"
)

type hookupOptions struct {
	dateTimeFlags
	exact    bool
	fullOnly bool
	csv      bool
	notes    bool
}

func newHookupCmd(root *rootFlags) *cobra.Command {
	opts := hookupOptions{}

	cmd := &cobra.Command{
		Use:   "hookup <part>...",
		Short: "Resolve and display signal chains for the given parts",
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

			def, err := app.definition()
			if err != nil {
				return err
			}

			snap := active.NewSnapshot(app.store, app.log, at)
			engine := hookup.NewEngine(snap, def, app.log)
			entries, err := engine.Resolve(cmd.Context(), args, opts.exact)
			if err != nil {
				return err
			}

			if opts.csv {
				out, err := dossier.RenderHookupCSV(snap, entries, opts.fullOnly)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), dossier.RenderHookup(snap, entries, opts.fullOnly))
			}

			if opts.notes {
				if err := snap.LoadInfo(cmd.Context()); err != nil {
					return err
				}
				notes := dossier.Notes(snap, entries)
				pns := make([]string, 0, len(notes))
				for pn := range notes {
					pns = append(pns, pn)
				}
				for _, pn := range model.SortKeys(pns, model.OrderNP) {
					for _, note := range notes[pn] {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", pn, note.Comment)
					}
				}
			}
			return nil
		},
	}

	addDateTimeFlags(cmd, &opts.dateTimeFlags)
	cmd.Flags().BoolVar(&opts.exact, "exact", false, "Match part numbers exactly instead of by prefix")
	cmd.Flags().BoolVar(&opts.fullOnly, "full-only", false, "Show only fully connected chains")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "Emit CSV instead of a table")
	cmd.Flags().BoolVar(&opts.notes, "notes", false, "Also list notes for every part in the chains")

	return cmd
}
