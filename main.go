package main

import (
	"adminctl/app/cmd"
	"adminctl/app/util/mylog"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.szostok.io/version/extension"
)

func main() {
	mylog.Preinit()

	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Administer users, roles and permissions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Register(rootCmd)
	rootCmd.AddCommand(extension.NewVersionCobraCmd())

	if err := rootCmd.Execute(); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, cmd.Describe(err))
		}
		os.Exit(1)
		return
	}
}
