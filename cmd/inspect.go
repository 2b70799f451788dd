package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/paulmach/osm"
	"github.com/spf13/cobra"
	"github.com/wegman-software/gurka-go/internal/logger"
	"github.com/wegman-software/gurka-go/internal/osmfile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pbf|file.osm>",
	Short: "Print the entities of a generated OSM file",
	Args:  cobra.ExactArgs(1),
	Run:   runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) {
	log := logger.Get()

	data, err := osmfile.ReadFile(context.Background(), args[0])
	if err != nil {
		exitWithError("failed to read file", err)
	}

	log.Info("File read",
		zap.String("file", args[0]),
		zap.Int("nodes", len(data.Nodes)),
		zap.Int("ways", len(data.Ways)),
		zap.Int("relations", len(data.Relations)),
	)

	writeEntities(cmd.OutOrStdout(), data)
}

func writeEntities(w io.Writer, data *osm.OSM) {
	for _, n := range data.Nodes {
		fmt.Fprintf(w, "node %d %.7f,%.7f %s\n", n.ID, n.Lon, n.Lat, formatTags(n.Tags))
	}
	for _, way := range data.Ways {
		refs := make([]string, len(way.Nodes))
		for i, wn := range way.Nodes {
			refs[i] = fmt.Sprint(wn.ID)
		}
		fmt.Fprintf(w, "way %d [%s] %s\n", way.ID, strings.Join(refs, " "), formatTags(way.Tags))
	}
	for _, rel := range data.Relations {
		members := make([]string, len(rel.Members))
		for i, m := range rel.Members {
			members[i] = fmt.Sprintf("%s/%d:%s", m.Type, m.Ref, m.Role)
		}
		fmt.Fprintf(w, "relation %d [%s] %s\n", rel.ID, strings.Join(members, " "), formatTags(rel.Tags))
	}
}

func formatTags(tags osm.Tags) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.Key + "=" + t.Value
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
