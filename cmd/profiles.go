package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/model"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage the caller's worker profile",
}

var profilesSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or replace the caller's worker profile",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		flags := cmd.Flags()
		profile := model.WorkerProfile{}
		profile.FullName, _ = flags.GetString("name")
		profile.TradeOrSkill, _ = flags.GetString("trade")
		profile.ExperienceYears, _ = flags.GetInt("experience")
		profile.CountryOfOrigin, _ = flags.GetString("country")
		profile.ExperienceInCountry, _ = flags.GetInt("in-country")
		profile.Summary, _ = flags.GetString("summary")

		stored, err := a.board.SaveProfile(ctx, mustCaller(ctx, cmd, a), profile)
		if err != nil {
			a.logger.Fatal("saving the profile", zap.Error(err))
		}
		a.logger.Info("profile saved", zap.String(logger.FieldWorkerID, stored.ID))
		printJSON(os.Stdout, stored)
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the caller's worker profile",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		profile, err := a.board.Profile(ctx, mustCaller(ctx, cmd, a))
		if err != nil {
			a.logger.Fatal("getting the profile", zap.Error(err))
		}
		printJSON(os.Stdout, profile)
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesSaveCmd, profilesShowCmd)

	profilesCmd.PersistentFlags().StringP("token", "t", "", "caller token (default is $TRADEMATCH_TOKEN)")

	f := profilesSaveCmd.Flags()
	f.String("name", "", "full name")
	f.String("trade", "", "trade or skill, e.g. Electrician")
	f.Int("experience", 0, "total years of experience")
	f.String("country", "", "country of origin")
	f.Int("in-country", 0, "years of experience in the destination country")
	f.String("summary", "", "free text summary of skills")
	profilesSaveCmd.MarkFlagRequired("trade")
}
