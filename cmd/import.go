package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/board"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import jobs and worker profiles from a YAML or JSON seed file",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		seedFile := viper.New()
		seedFile.SetConfigFile(args[0])
		if err := seedFile.ReadInConfig(); err != nil {
			a.logger.Fatal("reading the seed file", zap.Error(err), zap.String("filename", args[0]))
		}

		seed, err := board.DecodeSeed(seedFile.AllSettings())
		if err != nil {
			a.logger.Fatal("decoding the seed file", zap.Error(err), zap.String("filename", args[0]))
		}

		res, err := a.board.Import(ctx, seed)
		if err != nil {
			a.logger.Fatal("importing the seed", zap.Error(err), zap.Int("jobs", res.Jobs), zap.Int("worker_profiles", res.Profiles))
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
