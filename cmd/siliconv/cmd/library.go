package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/siliconv/pkg/formats"
	"github.com/ssargent/siliconv/pkg/storage"
)

// libraryCmd represents the library command
var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local replay library",
	Long: `Store converted replays in a local library under --data-dir.

Examples:
  siliconv library add level1.slc --name "Level 1"
  siliconv library list
  siliconv library get <id> -o level1.slc
  siliconv library delete <id>`,
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Convert a replay and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		hint, _ := cmd.Flags().GetString("format")

		return withLibrary(func(lib *storage.Library) error {
			entry, err := addToLibrary(lib, args[0], name, hint)
			if err != nil {
				return err
			}
			cmd.Printf("Stored %s as %s\n", entry.Name, entry.ID)
			return nil
		})
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored replays",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(lib *storage.Library) error {
			entries, err := lib.List()
			if err != nil {
				return fmt.Errorf("failed to list library: %w", err)
			}
			return printEntries(cmd.OutOrStdout(), entries)
		})
	},
}

var libraryGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Write a stored replay to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid replay id %q: %w", args[0], err)
		}

		return withLibrary(func(lib *storage.Library) error {
			path, err := exportFromLibrary(lib, id, output)
			if err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", path)
			return nil
		})
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored replay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid replay id %q: %w", args[0], err)
		}

		return withLibrary(func(lib *storage.Library) error {
			if err := lib.Delete(id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", id, err)
			}
			cmd.Printf("Deleted %s\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryAddCmd, libraryListCmd, libraryGetCmd, libraryDeleteCmd)

	libraryAddCmd.Flags().String("name", "", "Display name (default: file name)")
	libraryAddCmd.Flags().StringP("format", "f", "", "Format hint overriding the file extension")
	libraryGetCmd.Flags().StringP("output", "o", "", "Output file (default: <name>.slc in the output directory)")
}

// withLibrary opens the library in the configured data directory for the
// duration of fn
func withLibrary(fn func(lib *storage.Library) error) error {
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	lib, err := storage.Open(filepath.Join(cfg.DataDir, "library"))
	if err != nil {
		return err
	}
	defer lib.Close()

	return fn(lib)
}

func addToLibrary(lib *storage.Library, path, name, hint string) (storage.Entry, error) {
	r, err := readReplay(path, hint)
	if err != nil {
		return storage.Entry{}, err
	}
	if name == "" {
		name = filepath.Base(path)
	}
	entry, err := lib.Add(name, r)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to store %s: %w", path, err)
	}
	return entry, nil
}

// exportFromLibrary writes the slc3 bytes of id to output, or to a file
// named after the entry in the configured output directory.
func exportFromLibrary(lib *storage.Library, id ksuid.KSUID, output string) (string, error) {
	entry, err := lib.Get(id)
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", id, err)
	}
	data, err := lib.Raw(id)
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", id, err)
	}

	if output == "" {
		base := strings.TrimSuffix(filepath.Base(entry.Name), filepath.Ext(entry.Name))
		output = filepath.Join(cfg.OutputDir, base+formats.OutputExtension())
	}
	if err := os.MkdirAll(filepath.Dir(output), 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", output, err)
	}
	return output, nil
}

func printEntries(w io.Writer, entries []storage.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tSIZE\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.Name, e.Source, e.Size, e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
