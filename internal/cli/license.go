package cli

import (
	_ "embed"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

//go:embed license.txt
var licenseText string

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Print license information",
	Long: `Print the subtext license. With --deps, also list the third-party
modules compiled into this binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if _, err := fmt.Fprint(out, licenseText); err != nil {
			return err
		}

		showDeps, _ := cmd.Flags().GetBool("deps")
		if !showDeps {
			return nil
		}

		info, ok := debug.ReadBuildInfo()
		if !ok {
			return fmt.Errorf("build information is not available")
		}
		_, _ = fmt.Fprintln(out, "\nThird-party modules:")
		for _, dep := range info.Deps {
			if dep.Replace != nil {
				dep = dep.Replace
			}
			_, _ = fmt.Fprintf(out, "  %s %s\n", dep.Path, dep.Version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(licenseCmd)
	licenseCmd.Flags().Bool("deps", false, "Also list bundled third-party modules")
}
