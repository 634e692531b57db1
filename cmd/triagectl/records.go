package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file|-]",
		Short: "Submit one record, or an array of records, to the server",
		Long: "Reads a JSON object or an array of JSON objects from the file, or from\n" +
			"stdin when the argument is \"-\" or omitted, and ingests them in order.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg.LogLevel, cfg.LogFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			records, err := splitRecords(data)
			if err != nil {
				return err
			}

			c, err := cfg.newClient()
			if err != nil {
				return err
			}
			for i, rec := range records {
				if err := c.Ingest(cmd.Context(), rec); err != nil {
					logger.Error().Err(err).Int("record", i).Msg("ingest failed")
					return fmt.Errorf("record %d: %w", i, err)
				}
				logger.Debug().Int("record", i).Int("bytes", len(rec)).Msg("ingested")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d record(s)\n", len(records))
			return nil
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query",
		Short: "Print every record held by the server as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := cfg.newClient()
			if err != nil {
				return err
			}
			records, err := c.Query(cmd.Context())
			if err != nil {
				return err
			}
			if records == nil {
				records = []*patient.Record{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"data": records})
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard every record held by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg.LogLevel, cfg.LogFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			c, err := cfg.newClient()
			if err != nil {
				return err
			}
			if err := c.Reset(cmd.Context()); err != nil {
				return err
			}
			logger.Info().Str("server", c.BaseURL()).Msg("store reset")
			fmt.Fprintln(cmd.OutOrStdout(), "store reset")
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// splitRecords accepts a JSON object or an array of objects and returns
// each object's raw bytes in order.
func splitRecords(data []byte) ([][]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("input is not valid JSON")
	}
	res := gjson.ParseBytes(data)
	switch {
	case res.IsObject():
		return [][]byte{[]byte(res.Raw)}, nil
	case res.IsArray():
		var all [][]byte
		bad := -1
		res.ForEach(func(_, v gjson.Result) bool {
			if !v.IsObject() {
				bad = len(all)
				return false
			}
			all = append(all, []byte(v.Raw))
			return true
		})
		if bad >= 0 {
			return nil, fmt.Errorf("element %d is not a JSON object", bad)
		}
		if len(all) == 0 {
			return nil, errors.New("input array is empty")
		}
		return all, nil
	default:
		return nil, errors.New("input must be a JSON object or an array of objects")
	}
}
