package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocasync/internal/learning"
	"github.com/at-ishikawa/vocasync/internal/scheduler"
	"github.com/at-ishikawa/vocasync/internal/syncer"
	"github.com/at-ishikawa/vocasync/internal/wordlist"
)

func newReviewCommand() *cobra.Command {
	var newItemLimit int
	command := &cobra.Command{
		Use:   "review",
		Short: "Run an interactive review session over due and new items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("new") {
				newItemLimit = cfg.Review.NewItemLimit
			}

			store, docs, err := openStore(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			autoSync := cfg.Sync.Auto
			if !autoSync {
				if enabled, err := syncer.AutoSyncEnabled(docs); err == nil {
					autoSync = enabled
				}
			}

			deviceID := ""
			done := make(chan struct{})
			if autoSync && cfg.Remote.BaseURL != "" {
				orchestrator, client, err := newOrchestrator(cfg, store, docs)
				if err != nil {
					return err
				}
				defer func() {
					_ = client.Close()
				}()
				deviceID = orchestrator.DeviceID()

				debouncer := syncer.NewDebouncer(cfg.Sync.Debounce(), func(syncCtx context.Context) {
					if _, err := orchestrator.Sync(syncCtx, syncer.StrategyMerge); err != nil {
						slog.Default().Warn("auto sync failed",
							slog.String("error", err.Error()))
					}
				})
				go func() {
					defer close(done)
					debouncer.Run(ctx, store.Changes())
				}()
			} else {
				close(done)
			}

			words, err := wordlist.Load(cfg.Wordlists.Directory)
			if err != nil {
				return fmt.Errorf("wordlist.Load(%s) > %w", cfg.Wordlists.Directory, err)
			}
			if len(words) == 0 {
				fmt.Println("No wordlists found. Add YAML files under", cfg.Wordlists.Directory)
				cancel()
				<-done
				return nil
			}

			session := reviewSession{
				store:    store,
				words:    wordlist.ByID(words),
				deviceID: deviceID,
				in:       bufio.NewReader(os.Stdin),
				out:      cmd.OutOrStdout(),
			}
			queue := session.buildQueue(words, newItemLimit)
			if len(queue) == 0 {
				fmt.Println("Nothing to review. Come back later.")
				cancel()
				<-done
				return nil
			}

			err = session.run(queue)
			cancel()
			<-done
			return err
		},
	}
	command.Flags().IntVar(&newItemLimit, "new", 0, "maximum number of new items to introduce")
	return command
}

type reviewSession struct {
	store    *learning.Store
	words    map[string]wordlist.Word
	deviceID string
	in       *bufio.Reader
	out      io.Writer
}

// buildQueue puts due items first, then up to limit unseen items.
func (s *reviewSession) buildQueue(words []wordlist.Word, limit int) []learning.LearningRecord {
	now := time.Now()
	queue := scheduler.DueItems(s.store.All(), now)

	for _, itemID := range scheduler.NewItems(s.store.All(), wordlist.IDs(words), limit) {
		queue = append(queue, scheduler.NewRecord(itemID))
	}

	// Drop records whose item no longer exists in any wordlist.
	filtered := queue[:0]
	for _, record := range queue {
		if _, ok := s.words[record.ItemID]; ok {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func (s *reviewSession) run(queue []learning.LearningRecord) error {
	startedAt := time.Now()
	reviewed := 0
	correct := 0

	fmt.Fprintf(s.out, "%d item(s) to review. Grade each recall from 0 (blank) to 5 (perfect). Enter q to stop.\n\n", len(queue))

	for _, record := range queue {
		word := s.words[record.ItemID]

		color.New(color.FgCyan, color.Bold).Fprintf(s.out, "%s\n", word.Expression)
		fmt.Fprint(s.out, "Press enter to reveal the meaning: ")
		if _, err := s.in.ReadString('\n'); err != nil {
			break
		}
		fmt.Fprintf(s.out, "%s\n", word.Meaning)

		shownAt := time.Now()
		quality, quit, err := s.readQuality()
		if err != nil {
			return err
		}
		if quit {
			break
		}

		now := time.Now()
		updated := scheduler.Schedule(record, quality, now)
		if err := s.store.Upsert(updated); err != nil {
			return fmt.Errorf("store.Upsert(%s) > %w", record.ItemID, err)
		}
		if err := s.store.AppendReviewEvent(learning.ReviewEvent{
			ID:          uuid.NewString(),
			ItemID:      record.ItemID,
			Quality:     quality,
			Correct:     quality >= learning.RememberedThreshold,
			TimeSpentMs: now.Sub(shownAt).Milliseconds(),
			Timestamp:   now,
		}); err != nil {
			return fmt.Errorf("store.AppendReviewEvent(%s) > %w", record.ItemID, err)
		}

		reviewed++
		if quality >= learning.RememberedThreshold {
			correct++
			color.New(color.FgGreen).Fprintf(s.out, "Next review in %d day(s)\n\n", updated.IntervalDays)
		} else {
			color.New(color.FgRed).Fprintf(s.out, "Back to the start. Next review in %d day(s)\n\n", updated.IntervalDays)
		}
	}

	if reviewed > 0 {
		if err := s.store.AppendSessionLog(learning.SessionLog{
			ID:         uuid.NewString(),
			DeviceID:   s.deviceID,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
			Reviewed:   reviewed,
			Correct:    correct,
		}); err != nil {
			return fmt.Errorf("store.AppendSessionLog > %w", err)
		}
	}

	fmt.Fprintf(s.out, "Session finished: %d reviewed, %d correct\n", reviewed, correct)
	return nil
}

func (s *reviewSession) readQuality() (int, bool, error) {
	for {
		fmt.Fprint(s.out, "Quality (0-5): ")
		line, err := s.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return 0, true, nil
			}
			return 0, false, fmt.Errorf("failed to read an answer > %w", err)
		}

		answer := strings.TrimSpace(line)
		if answer == "q" || answer == "quit" {
			return 0, true, nil
		}
		quality, err := strconv.Atoi(answer)
		if err != nil || quality < 0 || quality > scheduler.MaxQuality {
			fmt.Fprintln(s.out, "Enter a number between 0 and 5, or q to stop")
			continue
		}
		return quality, false, nil
	}
}
