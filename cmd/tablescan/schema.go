package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/tablescan-go/avro"
	"github.com/hugr-lab/tablescan-go/avrofile"
	"github.com/hugr-lab/tablescan-go/types"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <file.avsc|file.avro>",
	Short: "Print the engine schema of an Avro schema or data file",
	Long: `Convert an Avro schema to the engine schema and print it with field ids.
For .avro data files the writer schema stored in the file is used.

Examples:
  tablescan schema events.avsc
  tablescan schema --arrow data/events.avro`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().Bool("arrow", false, "Print the Arrow schema instead")
}

func runSchema(cmd *cobra.Command, args []string) error {
	schema, err := loadSchema(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if arrow, _ := cmd.Flags().GetBool("arrow"); arrow {
		as, err := types.ToArrowSchema(schema)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, as)
		return nil
	}
	fmt.Fprintln(out, schema)
	return nil
}

// loadSchema reads an engine schema from an .avsc file or the header of an
// Avro data file.
func loadSchema(cmd *cobra.Command, path string) (*types.Schema, error) {
	if filepath.Ext(path) == ".avro" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		io, err := cfg.fileIO()
		if err != nil {
			return nil, err
		}
		in, err := io.NewInputFile(path)
		if err != nil {
			return nil, err
		}
		return avrofile.ReadSchema(cmd.Context(), in)
	}
	return readAvsc(path)
}

func readAvsc(path string) (*types.Schema, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	node, err := avro.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	schema, err := avro.ToSchema(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}
