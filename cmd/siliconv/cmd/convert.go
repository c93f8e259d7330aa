package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/siliconv/pkg/formats"
	"github.com/ssargent/siliconv/pkg/logger"
	"github.com/ssargent/siliconv/pkg/replay"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert -i <file> [-i <file>...]",
	Short: "Convert replays to slc3",
	Long: `Read one or more replays and write each one as slc3 into the output directory.
The format is taken from the file extension unless --format is given.

Example:
  siliconv convert -i level1.slc -i level2.slc -o ./converted`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, _ := cmd.Flags().GetStringSlice("input")
		hint, _ := cmd.Flags().GetString("format")
		outDir, _ := cmd.Flags().GetString("output")
		if outDir == "" {
			outDir = cfg.OutputDir
		}

		if len(inputs) == 0 {
			return fmt.Errorf("at least one --input is required")
		}

		for _, path := range inputs {
			out, err := convertFile(path, hint, outDir)
			if err != nil {
				return err
			}
			cmd.Printf("%s -> %s\n", path, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringSliceP("input", "i", nil, "Replay file to convert (repeatable)")
	convertCmd.Flags().StringP("format", "f", "", "Format hint overriding the file extension")
	convertCmd.Flags().StringP("output", "o", "", "Output directory (default from config)")
}

// readReplay opens path and decodes it, logging how long the read took.
// An empty hint falls back to the file extension.
func readReplay(path, hint string) (*replay.Replay, error) {
	if hint == "" {
		hint = formats.HintFromPath(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	logger.Log.Infof("opening %s for reading", path)

	start := time.Now()
	r, err := formats.Read(file, hint)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	logger.Log.Infof("[took %dms] read %d inputs from %s replay at %s",
		time.Since(start).Milliseconds(), len(r.Actions), r.Format, path)
	return r, nil
}

// convertFile converts path into outDir and returns the written file
func convertFile(path, hint, outDir string) (string, error) {
	r, err := readReplay(path, hint)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+formats.OutputExtension())

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	if err := formats.Write(r, out); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", outPath, err)
	}

	return outPath, nil
}
