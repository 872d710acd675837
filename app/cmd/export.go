package cmd

import (
	"adminctl/app/service/export"
	"adminctl/app/ui/gate"
	"fmt"
	"strings"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var exportOpts struct {
	format   string
	filename string
	dir      string
	search   string
	filters  []string
}

var Export = &cobra.Command{
	Use:       "export RESOURCE",
	Short:     "Download a report of a resource",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"users", "roles", "activity-logs", "login-history"},
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		resource := strings.Trim(args[0], "/")

		if err := gate.Require(a.session, gate.ExportGate(resource)); err != nil {
			return err
		}

		params, err := parseFilters(exportOpts.filters)
		if err != nil {
			return err
		}
		if exportOpts.search != "" {
			params["search"] = exportOpts.search
		}

		path, err := do.MustInvoke[*export.Service](a.di).Export(a.ctx, export.Request{
			Resource: resource,
			Filename: exportOpts.filename,
			Format:   exportOpts.format,
			Params:   params,
			Dir:      exportOpts.dir,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)

		return nil
	}),
}

func init() {
	Export.Flags().StringVar(&exportOpts.format, "format", export.DefaultFormat, "File format: "+strings.Join(export.Formats(), ", "))
	Export.Flags().StringVar(&exportOpts.filename, "filename", "", "Base of the file name, defaults to the resource")
	Export.Flags().StringVarP(&exportOpts.dir, "dir", "d", "", "Target directory, defaults to the working directory")
	Export.Flags().StringVarP(&exportOpts.search, "search", "s", "", "Search term")
	Export.Flags().StringArrayVarP(&exportOpts.filters, "filter", "f", nil, "Filter as key=value")
}
