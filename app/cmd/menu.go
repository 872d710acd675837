package cmd

import (
	"adminctl/app/ui/gate"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var Menu = &cobra.Command{
	Use:   "menu",
	Short: "Show the navigation available to the signed in user",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		printNav(cmd.OutOrStdout(), gate.FilterNav(gate.DefaultNavigation(), a.session))

		return nil
	}),
}

func printNav(out io.Writer, groups []gate.NavGroup) {
	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, group.Title)
		printNavItems(out, group.Items, "  ")
	}
}

func printNavItems(out io.Writer, items []gate.NavItem, indent string) {
	for _, item := range items {
		if item.URL == "" {
			fmt.Fprintf(out, "%s%s\n", indent, item.Title)
		} else {
			fmt.Fprintf(out, "%s%s  %s\n", indent, item.Title, item.URL)
		}

		printNavItems(out, item.Items, indent+"  ")
	}
}
