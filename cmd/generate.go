package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fcegen/internal/exercisegen"
	"fcegen/internal/llm"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one validated exercise batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryFlag, _ := cmd.Flags().GetString("category")
		levelFlag, _ := cmd.Flags().GetString("level")
		language, _ := cmd.Flags().GetString("language")
		age, _ := cmd.Flags().GetInt("age")
		preferred, _ := cmd.Flags().GetString("model")

		category, err := exercisegen.ParseCategory(categoryFlag)
		if err != nil {
			return fmt.Errorf("%w (known: %s)", err, joinCategories())
		}
		level, err := exercisegen.ParseLevel(levelFlag)
		if err != nil {
			return err
		}

		log, err := newLogger(cmd)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer log.Sync()

		events, closeEvents := openEvents(cmd, log)
		defer closeEvents()

		llmCfg := llm.ConfigFromEnv()
		if err := llmCfg.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		gateway, err := llm.BuildGateway(ctx, llmCfg, log, events,
			llm.WithSystemPrompt(exercisegen.SystemPrompt))
		if err != nil {
			return err
		}

		genCfg := exercisegen.DefaultConfig()
		genCfg.PreferredModel = preferred
		generator := exercisegen.New(gateway, genCfg, log, events)

		result, err := generator.Generate(ctx, exercisegen.GenerationRequest{
			ErrorCategory: category,
			FirstLanguage: language,
			Age:           age,
			Level:         level,
		})
		if err != nil {
			return err
		}

		if len(result.Questions) == 0 {
			fmt.Println("No valid batch could be generated this time. Try again later.")
			return nil
		}

		fmt.Printf("Model: %s\n\n", result.ModelUsed)
		for i, q := range result.Questions {
			fmt.Printf("Question %d: %s\n", i+1, q.Text)
			fmt.Printf("Answers:    %s\n\n", strings.Join(quoteAll(q.Answers), ", "))
		}
		return nil
	},
}

func joinCategories() string {
	cats := exercisegen.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

func init() {
	generateCmd.Flags().StringP("category", "c", "", "Error category to drill (required)")
	generateCmd.Flags().StringP("level", "l", "B1", "CEFR proficiency level (A1-C2)")
	generateCmd.Flags().String("language", "", "Learner's first language")
	generateCmd.Flags().Int("age", 18, "Learner's age")
	generateCmd.Flags().StringP("model", "m", "", "Preferred model to try first")
	generateCmd.MarkFlagRequired("category")
}
