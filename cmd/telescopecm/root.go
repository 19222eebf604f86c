package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	databasePath string
	sysdefPath   string
	hookupType   string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "telescopecm",
		Short:         "telescopecm tracks the as-built configuration of a telescope array",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.databasePath, "db", "", "Path to the configuration database")
	cmd.PersistentFlags().StringVar(&flags.sysdefPath, "sysdef", "", "Path to the topology definition document")
	cmd.PersistentFlags().StringVar(&flags.hookupType, "hookup-type", "", "Topology to resolve against (default from the document)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newHookupCmd(flags))
	cmd.AddCommand(newDossierCmd(flags))
	cmd.AddCommand(newSysdefCmd(flags))
	cmd.AddCommand(newAprioriCmd(flags))
	cmd.AddCommand(newAddPartCmd(flags))
	cmd.AddCommand(newStopPartCmd(flags))
	cmd.AddCommand(newAddConnectionCmd(flags))
	cmd.AddCommand(newStopConnectionCmd(flags))
	cmd.AddCommand(newAddInfoCmd(flags))
	cmd.AddCommand(newUpdateAprioriCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
