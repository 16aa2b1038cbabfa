package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/board"
	"github.com/spigell/tradematch/internal/filtering"
	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/selection"
)

const (
	PromptSelectAll = "Select all / clear all"
	PromptClear     = "Clear selection"
	PromptShortlist = "Shortlist selected"
	PromptReject    = "Reject selected (append to exclude file)"
	PromptShow      = "Show decisions"
	PromptDone      = "Done"

	rejectReason = "rejected by employer"
)

var errDone = errors.New("done")

var rankCmd = &cobra.Command{
	Use:   "rank <job-id>",
	Short: "Rank worker profiles against a job and review them",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntP("limit", "l", 0, "number of candidates to show; 0 is the configured default, -1 shows all")
	rankCmd.Flags().Bool("explain", false, "ask the AI assistant for a note on every candidate")
	rankCmd.Flags().BoolP("no-interactive", "n", false, "print the ranking and exit")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with rejected candidates. Default is unset.")

	viper.BindPFlag("matching.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
}

func rank(cmd *cobra.Command, jobID string) {
	ctx := context.Background()
	a := setup(ctx)
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	explain, _ := cmd.Flags().GetBool("explain")

	job, err := a.board.Job(ctx, jobID)
	if err != nil {
		a.logger.Fatal("getting the job", zap.Error(err), zap.String(logger.FieldJobID, jobID))
	}

	printFilters(os.Stdout, filtering.Describe(a.board.Filters()))
	fmt.Println()

	results, err := a.board.RankCandidates(ctx, job.ID, board.RankOptions{Limit: limit, Explain: explain})
	if err != nil {
		a.logger.Fatal("ranking candidates", zap.Error(err), zap.String(logger.FieldJobID, job.ID))
	}

	if len(results) == 0 {
		a.logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	fmt.Printf("%s (%s, %s)\n", job.Title, job.Country, job.Status)
	printResults(os.Stdout, results)

	if noInteractive, _ := cmd.Flags().GetBool("no-interactive"); noInteractive {
		return
	}

	tracker := selection.New()
	tracker.Focus(job.ID, workerIDs(results))

	for {
		if err := review(a, tracker, results); err != nil {
			if errors.Is(err, errDone) {
				return
			}
			a.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// review runs one prompt round over the candidates in focus.
func review(a *application, tracker *selection.Tracker, results []matching.MatchResult) error {
	items := make([]string, 0, len(results)+6)
	for _, r := range results {
		mark := " "
		if tracker.IsSelected(r.WorkerID) {
			mark = "x"
		}
		items = append(items, fmt.Sprintf("[%s] %s %s / %s / %d", mark, r.WorkerID, r.Worker.FullName, r.Worker.TradeOrSkill, r.Score))
	}
	items = append(items, PromptSelectAll, PromptClear, PromptShortlist, PromptReject, PromptShow, PromptDone)

	candidatePrompt := promptui.Select{
		Label: fmt.Sprintf("Toggle candidates and press ENTER (%d selected)", tracker.Len()),
		Items: items,
		Size:  min(len(items), 15),
	}

	_, selected, err := candidatePrompt.Run()
	if err != nil {
		return err
	}

	log := a.logger.With(logger.MatchFields(tracker.JobID(), "")...)

	switch selected {
	case PromptDone:
		return errDone
	case PromptSelectAll:
		tracker.SelectAll()
	case PromptClear:
		tracker.Clear()
	case PromptShow:
		printJSON(os.Stdout, tracker.Decisions())
	case PromptShortlist:
		ids := tracker.Shortlist()
		log.Info("shortlisted candidates", zap.Strings("worker_ids", ids))
	case PromptReject:
		excludeFile := a.config.Matching.ExcludeFile
		if excludeFile == "" {
			log.Warn("rejected candidates are not persisted", zap.String("hint", "set matching.exclude-file or pass --exclude-file"))
		}
		ids := tracker.Reject()
		if excludeFile != "" && len(ids) > 0 {
			if err := filtering.AppendExcluded(excludeFile, filtering.NewExcluded(tracker.JobID(), rejectReason, ids)); err != nil {
				return fmt.Errorf("append to exclude file: %w", err)
			}
			log.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(ids)))
		}
		log.Info("rejected candidates", zap.Strings("worker_ids", ids))
	default:
		// "[x] <worker-id> ..."
		fields := strings.Fields(strings.TrimPrefix(strings.TrimPrefix(selected, "[x]"), "[ ]"))
		if len(fields) == 0 {
			return fmt.Errorf("invalid choice: %s", selected)
		}
		if _, err := tracker.Toggle(fields[0]); err != nil {
			return fmt.Errorf("there is no such candidate %s: %w", fields[0], err)
		}
	}
	return nil
}

func workerIDs(results []matching.MatchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.WorkerID)
	}
	return ids
}
