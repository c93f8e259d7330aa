package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/siliconv/pkg/formats"
)

// fileInfo is the info output for a single file
type fileInfo struct {
	Path string `json:"path"`
	formats.Info
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>...",
	Short: "Show replay details",
	Long: `Print the format, action count, game version, tps and seed of each replay.

Example:
  siliconv info level1.slc
  siliconv info --json *.slc`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hint, _ := cmd.Flags().GetString("format")
		asJSON, _ := cmd.Flags().GetBool("json")

		infos, err := describeFiles(args, hint)
		if err != nil {
			return err
		}
		return printInfos(cmd.OutOrStdout(), infos, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringP("format", "f", "", "Format hint overriding the file extension")
	infoCmd.Flags().Bool("json", false, "Print JSON instead of text")
}

func describeFiles(paths []string, hint string) ([]fileInfo, error) {
	infos := make([]fileInfo, 0, len(paths))
	for _, path := range paths {
		r, err := readReplay(path, hint)
		if err != nil {
			return nil, err
		}
		infos = append(infos, fileInfo{Path: path, Info: formats.Describe(r)})
	}
	return infos, nil
}

func printInfos(w io.Writer, infos []fileInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(w, "%s\n", info.Path)
		fmt.Fprintf(w, "  format:       %s\n", info.Format)
		fmt.Fprintf(w, "  actions:      %d\n", info.ActionsCount)
		fmt.Fprintf(w, "  game version: %s\n", info.GameVersion)
		fmt.Fprintf(w, "  tps:          %g\n", info.TPS)
		fmt.Fprintf(w, "  seed:         %d\n", info.Seed)
	}
	return nil
}
