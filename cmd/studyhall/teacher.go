package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarpov/studyhall/internal/author"
	"github.com/mkarpov/studyhall/internal/model"
)

func teacherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Teacher operations",
	}
	cmd.AddCommand(analyticsCmd(), createQuizCmd())
	return cmd
}

func analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the class performance report",
		RunE:  runAnalytics,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func createQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-quiz",
		Short: "Publish a quiz to your students",
		Long: `Publish a quiz to your students.

In AI mode the platform generates the questions from the topic. In manual
mode the questions come from a JSON file: an array of objects with "question",
"options" (exactly four) and "answer", where the answer must match one of the
options exactly, including case.`,
		RunE: runCreateQuiz,
	}
	f := cmd.Flags()
	f.StringP("topic", "t", "", "Quiz topic (required)")
	f.StringP("mode", "m", "AI", "Quiz source (AI, Manual)")
	f.StringP("questions", "q", "", "Path to questions JSON file (manual mode)")
	addClientFlags(f)
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	env, err := newClientEnv(v)
	if err != nil {
		return err
	}
	defer env.Close()
	if err := env.requireLogin(); err != nil {
		return err
	}

	analytics, err := env.api.Analytics(cmd.Context())
	if err != nil {
		return fmt.Errorf("load analytics: %w", err)
	}

	fmt.Printf("Students: %d   Quizzes: %d   Class average: %.0f%%\n\n",
		analytics.Stats.TotalStudents, analytics.Stats.TotalQuizzes, analytics.Stats.ClassAverage)
	for _, s := range analytics.Students {
		fmt.Printf("%-24s %3d quizzes  avg %3.0f%%  %s\n", s.Name, s.QuizzesTaken, s.AverageScore, s.Status)
	}
	return nil
}

func runCreateQuiz(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	env, err := newClientEnv(v)
	if err != nil {
		return err
	}
	defer env.Close()
	if err := env.requireLogin(); err != nil {
		return err
	}

	var mode model.PublishMode
	switch v.GetString("mode") {
	case string(model.ModeAI):
		mode = model.ModeAI
	case string(model.ModeManual):
		mode = model.ModeManual
	default:
		return fmt.Errorf("mode must be AI or Manual, got %q", v.GetString("mode"))
	}

	builder := author.NewBuilder()
	if mode == model.ModeManual {
		path := v.GetString("questions")
		if path == "" {
			return fmt.Errorf("manual mode needs --questions")
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open questions file: %w", err)
		}
		defer f.Close()
		n, err := builder.ImportDrafts(f)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		fmt.Printf("Loaded %d question(s) from %s\n", n, path)
	}

	if err := builder.Publish(cmd.Context(), env.api, v.GetString("topic"), mode); err != nil {
		return fmt.Errorf("publish quiz: %w", err)
	}
	fmt.Println("Quiz published and assigned.")
	return nil
}
