package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/vocasync/internal/merge"
	"github.com/at-ishikawa/vocasync/internal/syncer"
)

const maxTokenRefreshAttempts = 3

// strategyFlag parses and validates the --strategy flag value.
type strategyFlag syncer.Strategy

var _ pflag.Value = (*strategyFlag)(nil)

func (f *strategyFlag) String() string {
	return string(*f)
}

func (f *strategyFlag) Set(value string) error {
	switch syncer.Strategy(value) {
	case syncer.StrategyMerge, syncer.StrategyUpload, syncer.StrategyDownload:
		*f = strategyFlag(value)
		return nil
	}
	return fmt.Errorf("must be one of %s, %s or %s", syncer.StrategyMerge, syncer.StrategyUpload, syncer.StrategyDownload)
}

func (f *strategyFlag) Type() string {
	return "strategy"
}

func newSyncCommand() *cobra.Command {
	strategy := strategyFlag(syncer.StrategyMerge)
	command := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize learning state with the remote blob store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, docs, err := openStore(cfg)
			if err != nil {
				return err
			}
			orchestrator, client, err := newOrchestrator(cfg, store, docs)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			status, err := orchestrator.Sync(cmd.Context(), syncer.Strategy(strategy))
			if err != nil {
				if errors.Is(err, syncer.ErrNoRemoteData) {
					fmt.Println("No remote snapshot exists yet. Run with --strategy upload first.")
					return nil
				}

				var authErr *syncer.AuthExpiredError
				if errors.As(err, &authErr) && cfg.Remote.RefreshToken != "" {
					fmt.Println("Session expired, refreshing the token")
					if refreshErr := client.RefreshSession(cmd.Context(), cfg.Remote.RefreshToken, maxTokenRefreshAttempts); refreshErr != nil {
						return fmt.Errorf("client.RefreshSession > %w", refreshErr)
					}
					if status, err = orchestrator.Sync(cmd.Context(), syncer.Strategy(strategy)); err != nil {
						return err
					}
				} else {
					return err
				}
			}

			printStatus(status)
			return nil
		},
	}
	command.Flags().Var(&strategy, "strategy", "sync strategy: merge, upload or download")

	command.AddCommand(
		newSyncStatusCommand(),
		newSyncResolveCommand(),
		newSyncAutoCommand(),
	)
	return command
}

func newSyncStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the result of the last sync and any unresolved conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, docs, err := openStore(cfg)
			if err != nil {
				return err
			}
			orchestrator, client, err := newOrchestrator(cfg, store, docs)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			printStatus(orchestrator.Status())
			return nil
		},
	}
}

func newSyncResolveCommand() *cobra.Command {
	var choose string
	command := &cobra.Command{
		Use:   "resolve [item id]",
		Short: "Resolve a merge conflict by choosing one side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var choice merge.Choice
			switch choose {
			case "local":
				choice = merge.ChooseLocal
			case "remote":
				choice = merge.ChooseRemote
			default:
				return fmt.Errorf("unknown choice %q: use local or remote", choose)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, docs, err := openStore(cfg)
			if err != nil {
				return err
			}
			orchestrator, client, err := newOrchestrator(cfg, store, docs)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			if err := orchestrator.Resolve(args[0], choice); err != nil {
				return err
			}
			fmt.Printf("Resolved %s with the %s version\n", args[0], choose)
			return nil
		},
	}
	command.Flags().StringVar(&choose, "choose", "", "which side wins: local or remote")
	if err := command.MarkFlagRequired("choose"); err != nil {
		panic(err)
	}
	return command
}

func newSyncAutoCommand() *cobra.Command {
	var enable, disable bool
	command := &cobra.Command{
		Use:   "auto",
		Short: "Enable or disable automatic sync after review sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, docs, err := openStore(cfg)
			if err != nil {
				return err
			}

			switch {
			case enable == disable:
				enabled, err := syncer.AutoSyncEnabled(docs)
				if err != nil {
					return err
				}
				fmt.Printf("Auto sync enabled: %t\n", enabled || cfg.Sync.Auto)
			case enable:
				if err := syncer.SetAutoSync(docs, true); err != nil {
					return err
				}
				fmt.Println("Auto sync enabled")
			default:
				if err := syncer.SetAutoSync(docs, false); err != nil {
					return err
				}
				fmt.Println("Auto sync disabled")
			}
			return nil
		},
	}
	command.Flags().BoolVar(&enable, "enable", false, "turn auto sync on")
	command.Flags().BoolVar(&disable, "disable", false, "turn auto sync off")
	return command
}

func printStatus(status syncer.Status) {
	if !status.LastSyncTime.IsZero() {
		fmt.Printf("Last sync: %s\n", status.LastSyncTime.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Last sync: never")
	}
	if status.LoggedOut {
		color.New(color.FgYellow).Println("Logged out: refresh the session token")
	}
	if status.LastError != "" {
		color.New(color.FgRed).Printf("Last error: %s\n", status.LastError)
	}

	if len(status.Conflicts) == 0 {
		fmt.Println("No unresolved conflicts")
		return
	}

	color.New(color.FgYellow, color.Bold).Printf("%d unresolved conflict(s)\n", len(status.Conflicts))
	for _, conflict := range status.Conflicts {
		fmt.Printf("  %s (%s)\n", conflict.ItemID, conflict.Type)
		fmt.Printf("    local:  repetitions=%d mastery=%d modified=%s\n",
			conflict.Local.Repetitions, conflict.Local.MasteryLevel, conflict.Local.LastModifiedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("    remote: repetitions=%d mastery=%d modified=%s\n",
			conflict.Remote.Repetitions, conflict.Remote.MasteryLevel, conflict.Remote.LastModifiedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Run: vocasync sync resolve <item id> --choose local|remote")
}
