package cmd

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/wegman-software/gurka-go/internal/grid"
)

var projectCmd = &cobra.Command{
	Use:   "project <map.txt>",
	Short: "Print the coordinates of the nodes drawn in an ASCII map",
	Long: `Project an ASCII map file using --gridsize and --top-left and print
one "name lon lat" line per node in drawing order.`,
	Args: cobra.ExactArgs(1),
	Run:  runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, args []string) {
	text, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("failed to read map", err)
	}
	origin, err := cfg.Origin()
	if err != nil {
		exitWithError("invalid configuration", err)
	}

	out := cmd.OutOrStdout()
	grid.Project(string(text), cfg.GridSize, origin).Each(func(name string, p orb.Point) {
		fmt.Fprintf(out, "%s %.9f %.9f\n", name, p.Lon(), p.Lat())
	})
}
