package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocasync/internal/snapshot"
)

func newExportCommand() *cobra.Command {
	var outputFile string
	command := &cobra.Command{
		Use:   "export",
		Short: "Export the local learning state as a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}

			exported := snapshot.New(store.All(), store.Events(), store.Sessions(), time.Now())
			blob, err := snapshot.Serialize(exported)
			if err != nil {
				return fmt.Errorf("snapshot.Serialize > %w", err)
			}

			if outputFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(blob))
				return nil
			}
			if err := os.WriteFile(outputFile, blob, 0o644); err != nil {
				return fmt.Errorf("os.WriteFile(%s) > %w", outputFile, err)
			}

			checksum, err := snapshot.Checksum(exported)
			if err != nil {
				return fmt.Errorf("snapshot.Checksum > %w", err)
			}
			fmt.Printf("Wrote %s (%d records, checksum %s)\n", outputFile, len(exported.Records), checksum)
			return nil
		},
	}
	command.Flags().StringVar(&outputFile, "output", "", "write the snapshot to this file instead of stdout")
	return command
}

func newImportCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "import [snapshot file]",
		Short: "Replace the local learning state with a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", args[0], err)
			}

			imported, err := snapshot.Deserialize(blob)
			if err != nil {
				return fmt.Errorf("snapshot.Deserialize > %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}

			if err := store.ReplaceAll(imported.Records, imported.ReviewEvents, imported.SessionLogs); err != nil {
				return fmt.Errorf("store.ReplaceAll > %w", err)
			}
			fmt.Printf("Imported %d records, %d review events, %d session logs\n",
				len(imported.Records), len(imported.ReviewEvents), len(imported.SessionLogs))
			return nil
		},
	}
	return command
}
