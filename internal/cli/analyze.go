package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gymlog/internal/models"
	"gymlog/internal/services"
)

func newAnalyzeMealCmd(opts *options) *cobra.Command {
	var mealType, goal string
	cmd := &cobra.Command{
		Use:   "analyze-meal <description>",
		Short: "Estimate nutrients for a meal description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt := models.MealType(mealType)
			if mt != "" && !mt.Valid() {
				return fmt.Errorf("invalid --meal-type %q (breakfast, lunch, dinner, snack)", mealType)
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			_, analyzer, _, _ := newServices(cfg, opts.logger)
			res := analyzer.Analyze(cmd.Context(), services.MealAnalysisRequest{
				Description: strings.Join(args, " "),
				MealType:    mt,
				Goal:        models.Goal(goal),
			})
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&mealType, "meal-type", "", "breakfast, lunch, dinner or snack")
	cmd.Flags().StringVar(&goal, "goal", "", "weight_loss, weight_gain, muscle_gain or muscle_loss")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
