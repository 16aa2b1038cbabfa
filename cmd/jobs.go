package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/model"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Search and manage job postings",
}

var jobsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search active jobs by title, description or skill",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		jobs := a.board.SearchJobs(ctx, query)
		a.logger.Info("found jobs", zap.String("query", query), zap.Int("count", len(jobs)))
		printJobs(os.Stdout, jobs)
	},
}

var jobsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List every job owned by the caller",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		jobs, err := a.board.EmployerJobs(ctx, mustCaller(ctx, cmd, a))
		if err != nil {
			a.logger.Fatal("listing employer jobs", zap.Error(err))
		}
		printJobs(os.Stdout, jobs)
	},
}

var jobsPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Create a job or edit one the caller owns",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		caller := mustCaller(ctx, cmd, a)

		flags := cmd.Flags()
		job := model.Job{}
		job.ID, _ = flags.GetString("id")
		job.Title, _ = flags.GetString("title")
		job.Description, _ = flags.GetString("description")
		job.RequiredSkills, _ = flags.GetStringSlice("skills")
		job.Location, _ = flags.GetString("location")
		job.Country, _ = flags.GetString("country")
		job.EmployerName, _ = flags.GetString("employer-name")
		job.SalaryMin, _ = flags.GetInt("salary-min")
		job.SalaryMax, _ = flags.GetInt("salary-max")
		status, _ := flags.GetString("status")

		if status != "" {
			parsed, err := model.ParseStatus(status)
			if err != nil {
				a.logger.Fatal("parsing status", zap.Error(err))
			}
			job.Status = parsed
		}

		if draft, _ := flags.GetBool("draft"); draft && job.Description == "" {
			d, err := a.board.DraftJob(ctx, caller, job.Title, job.EmployerName)
			if err != nil {
				a.logger.Warn("drafting the description", zap.Error(err))
			} else {
				job.Description = d.Description
				if len(job.RequiredSkills) == 0 {
					job.RequiredSkills = d.RequiredSkills
				}
			}
		}

		stored, err := a.board.PostJob(ctx, caller, job)
		if err != nil {
			a.logger.Fatal("posting the job", zap.Error(err))
		}
		printJSON(os.Stdout, stored)
	},
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id> <status>",
	Short: "Change the status of a job the caller owns (Active, On Hold, Closed)",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		// "on hold" may come unquoted.
		status := model.JobStatus(strings.Join(args[1:], " "))

		job, err := a.board.UpdateJobStatus(ctx, mustCaller(ctx, cmd, a), args[0], status)
		if err != nil {
			a.logger.Fatal("changing the job status", zap.Error(err), zap.String(logger.FieldJobID, args[0]))
		}
		a.logger.Info("job status changed", zap.String(logger.FieldJobID, job.ID), zap.String("status", string(job.Status)))
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job the caller owns",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		if err := a.board.DeleteJob(ctx, mustCaller(ctx, cmd, a), args[0]); err != nil {
			a.logger.Fatal("deleting the job", zap.Error(err), zap.String(logger.FieldJobID, args[0]))
		}
	},
}

var jobsDraftCmd = &cobra.Command{
	Use:   "draft <title>",
	Short: "Ask the AI assistant for a description and required skills",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		company, _ := cmd.Flags().GetString("company")
		draft, err := a.board.DraftJob(ctx, mustCaller(ctx, cmd, a), strings.Join(args, " "), company)
		if err != nil {
			a.logger.Fatal("drafting the job", zap.Error(err))
		}
		printJSON(os.Stdout, draft)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsSearchCmd, jobsMineCmd, jobsPostCmd, jobsStatusCmd, jobsDeleteCmd, jobsDraftCmd)

	jobsCmd.PersistentFlags().StringP("token", "t", "", "caller token (default is $TRADEMATCH_TOKEN)")

	f := jobsPostCmd.Flags()
	f.String("id", "", "id of the job to edit; empty creates a new one")
	f.String("title", "", "job title")
	f.String("description", "", "job description")
	f.StringSlice("skills", nil, "required skills, comma separated")
	f.String("status", "", "Active, On Hold or Closed (default Active)")
	f.String("location", "", "location")
	f.String("country", "", "country")
	f.String("employer-name", "", "employer display name")
	f.Int("salary-min", 0, "minimum salary")
	f.Int("salary-max", 0, "maximum salary")
	f.Bool("draft", false, "fill an empty description with the AI assistant")
	jobsPostCmd.MarkFlagRequired("title")

	jobsDraftCmd.Flags().String("company", "", "company name for the draft")
}

// mustCaller resolves the --token flag or TRADEMATCH_TOKEN.
func mustCaller(ctx context.Context, cmd *cobra.Command, a *application) model.Caller {
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = viper.GetString("token")
	}

	caller, err := a.caller(ctx, token)
	if err != nil {
		a.logger.Fatal("resolving the caller", zap.Error(err),
			zap.String("hint", "pass --token or set TRADEMATCH_TOKEN to a token from identity.callers"))
	}
	return caller
}
