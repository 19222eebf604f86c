package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/sysdef"
)

func newSysdefCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sysdef",
		Short: "Show the resolved topology definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer app.close()

			def, err := app.definition()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "type:           %s\n", def.Type)
			fmt.Fprintf(out, "polarizations:  %s\n", strings.Join(def.Polarizations, ", "))
			fmt.Fprintf(out, "checking order: %s\n", strings.Join(def.CheckingOrder, ", "))
			fmt.Fprintf(out, "chain:          %s\n", strings.Join(def.Hookup, " -> "))

			for _, partType := range def.Hookup {
				for _, pol := range def.Polarizations {
					up, err := def.PortList(partType, sysdef.Up, pol)
					if err != nil {
						return err
					}
					down, err := def.PortList(partType, sysdef.Down, pol)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "  %s/%s: up [%s] down [%s]\n",
						partType, pol, strings.Join(up, ", "), strings.Join(down, ", "))
				}
			}
			return nil
		},
	}

	return cmd
}
