package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/tablescan-go/avrofile"
	"github.com/hugr-lab/tablescan-go/convert"
	"github.com/hugr-lab/tablescan-go/scan"
	"github.com/hugr-lab/tablescan-go/task"
	"github.com/hugr-lab/tablescan-go/types"
)

var readCmd = &cobra.Command{
	Use:   "read <file>...",
	Short: "Read Avro data files and print their rows as JSON lines",
	Long: `Read each Avro data file as its own unit of work and print the rows as
JSON lines, in argument order. Multi-branch unions print as
{"tag": n, "fieldN": value} objects.

Examples:
  tablescan read data/events.avro
  tablescan read --parallel 4 --schema events.avsc data/*.avro`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().Int("parallel", 1, "Number of files read concurrently")
	readCmd.Flags().String("schema", "", "Expected .avsc schema; files with another schema fail")
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.logger()
	io, err := cfg.fileIO()
	if err != nil {
		return err
	}

	var expected *types.Schema
	if path, _ := cmd.Flags().GetString("schema"); path != "" {
		if expected, err = readAvsc(path); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	units := make([]task.CombinedScanTask, len(args))
	schemas := make([]*types.Schema, len(args))
	for i, location := range args {
		in, err := io.NewInputFile(location)
		if err != nil {
			return err
		}
		size, err := in.Size(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", location, err)
		}
		if schemas[i] = expected; schemas[i] == nil {
			if schemas[i], err = avrofile.ReadSchema(ctx, in); err != nil {
				return fmt.Errorf("%s: %w", location, err)
			}
		}
		units[i] = task.Combine(task.NewFileTask(task.DataFile{
			Path:          location,
			Format:        task.FormatAvro,
			FileSizeBytes: size,
		}))
	}

	parallel, _ := cmd.Flags().GetInt("parallel")
	results := make([][]map[string]any, len(units))
	err = scan.ReadUnits(ctx, units, scan.Config[convert.Row]{
		Opener: avrofile.NewOpener(avrofile.Options{Schema: expected, Logger: logger}),
		IO:     io,
		Logger: logger,
	}, parallel, func(unit int, r *scan.Reader[convert.Row]) error {
		st := schemas[unit].AsStruct()
		for r.Next() {
			row, _ := jsonValue(st, r.Value()).(map[string]any)
			results[unit] = append(results[unit], row)
		}
		return r.Err()
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, rows := range results {
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
	}
	return nil
}
