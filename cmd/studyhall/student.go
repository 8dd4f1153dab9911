package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarpov/studyhall/internal/chat"
	appI18n "github.com/mkarpov/studyhall/internal/i18n"
	"github.com/mkarpov/studyhall/internal/model"
	"github.com/mkarpov/studyhall/internal/quiz"
)

func quizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take a quiz in the terminal",
		Long: `Take a quiz in the terminal.

Exactly one source selects the quiz: --topic asks the AI service to generate
one, --adaptive requests a remedial quiz on your weakest topic, and --assigned
starts a teacher-published quiz by its ID (see --list).`,
		RunE: runQuiz,
	}
	f := cmd.Flags()
	f.StringP("topic", "t", "", "Generate an AI quiz on this topic")
	f.StringP("difficulty", "d", "medium", "Difficulty for generated quizzes (easy, medium, hard)")
	f.Bool("adaptive", false, "Take a remedial quiz on your weakest topic")
	f.String("assigned", "", "Start a teacher-published quiz by ID")
	f.Bool("list", false, "List teacher-published quizzes and exit")
	addClientFlags(f)
	return cmd
}

func coursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List course modules and your enrollment status",
		RunE:  runCourses,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func enrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll <course-id>",
		Short: "Enroll in a course module",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnroll,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		RunE:  runProfile,
	}
	f := cmd.Flags()
	f.String("name", "", "New display name (omit to just show the profile)")
	addClientFlags(f)
	return cmd
}

func progressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show your quiz history and averages",
		RunE:  runProgress,
	}
	addClientFlags(cmd.Flags())
	cmd.AddCommand(progressExportCmd())
	return cmd
}

func progressExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your quiz history as JSON",
		RunE:  runProgressExport,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addClientFlags(f)
	return cmd
}

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recommend",
		Aliases: []string{"plan"},
		Short:   "Fetch a personalized AI study plan",
		RunE:    runRecommend,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the AI tutor",
		RunE:  runChat,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func runQuiz(cmd *cobra.Command, _ []string) error {
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

	ctx := cmd.Context()

	if v.GetBool("list") {
		quizzes, err := env.api.AssignedQuizzes(ctx)
		if err != nil {
			return fmt.Errorf("list quizzes: %w", err)
		}
		if len(quizzes) == 0 {
			fmt.Println("Nothing assigned yet.")
			return nil
		}
		for _, q := range quizzes {
			fmt.Printf("%s  %s (%d questions)\n", q.ID, q.Topic, len(q.Questions))
		}
		return nil
	}

	engine := quiz.NewEngine()
	gen := engine.Begin()

	var topic string
	var questions []model.Question
	switch {
	case v.GetString("assigned") != "":
		quizzes, err := env.api.AssignedQuizzes(ctx)
		if err != nil {
			engine.FailLoad(gen)
			return fmt.Errorf("load quiz: %w", err)
		}
		id := v.GetString("assigned")
		for _, q := range quizzes {
			if q.ID == id {
				topic, questions = q.Topic, q.Questions
				break
			}
		}
		if questions == nil {
			engine.FailLoad(gen)
			return fmt.Errorf("no assigned quiz with ID %q", id)
		}
	case v.GetBool("adaptive"):
		t, qs, err := env.api.GenerateAdaptiveQuiz(ctx)
		if err != nil {
			engine.FailLoad(gen)
			return fmt.Errorf("generate adaptive quiz: %w", err)
		}
		topic, questions = t+" (Remedial)", qs
	case v.GetString("topic") != "":
		qs, err := env.api.GenerateQuiz(ctx, v.GetString("topic"), v.GetString("difficulty"))
		if err != nil {
			engine.FailLoad(gen)
			return fmt.Errorf("generate quiz: %w", err)
		}
		topic, questions = v.GetString("topic"), qs
	default:
		return fmt.Errorf("pick a quiz source: --topic, --adaptive or --assigned (see --list)")
	}

	if err := engine.CompleteLoad(gen, topic, questions); err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}

	fmt.Printf("\n=== %s ===\n", engine.Topic())
	scanner := bufio.NewScanner(os.Stdin)
	for i, q := range engine.Questions() {
		fmt.Printf("\nQ%d: %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, opt)
		}
		choice := promptChoice(scanner, len(q.Options))
		if choice >= 0 {
			if err := engine.Select(i, q.Options[choice]); err != nil {
				return fmt.Errorf("record answer: %w", err)
			}
		}
	}

	score, err := engine.Submit(ctx, env.api)
	if err != nil {
		// The score stands even when recording it remotely failed.
		fmt.Printf("\nScore: %d%%\n", score)
		return fmt.Errorf("save score: %w", err)
	}
	fmt.Printf("\nScore: %d%% (saved)\n", score)
	return nil
}

// promptChoice reads a 1-based option number. Empty input skips the question;
// anything unparseable re-prompts.
func promptChoice(scanner *bufio.Scanner, options int) int {
	for {
		fmt.Printf("Your answer [1-%d, Enter to skip]: ", options)
		if !scanner.Scan() {
			return -1
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return -1
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= options {
			return n - 1
		}
		fmt.Println("Please enter a number from the list.")
	}
}

func runCourses(cmd *cobra.Command, _ []string) error {
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

	courses, err := env.api.Courses(cmd.Context())
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	if len(courses) == 0 {
		fmt.Println("No courses published yet.")
		return nil
	}
	for _, c := range courses {
		mark := " "
		if c.IsEnrolled {
			mark = "*"
		}
		fmt.Printf("%s %s  %s (%s)\n", mark, c.ID, c.Title, c.Subject)
	}
	fmt.Println("\n* = enrolled")
	return nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
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

	if err := env.api.Enroll(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	fmt.Println("Enrolled.")
	return nil
}

func runProfile(cmd *cobra.Command, _ []string) error {
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

	ctx := cmd.Context()
	if name := v.GetString("name"); name != "" {
		if err := env.api.UpdateProfile(ctx, name); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		env.sess.SetDisplayName(name)
		fmt.Println("Profile updated.")
	}

	profile, err := env.api.Profile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	fmt.Printf("Name:  %s\nEmail: %s\nRole:  %s\n", profile.Name, profile.Email, profile.Role)
	return nil
}

func runProgress(cmd *cobra.Command, _ []string) error {
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

	report, err := env.api.Progress(cmd.Context())
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	fmt.Printf("Quizzes taken: %d   Average: %.0f%%\n\n", report.Stats.TotalQuizzes, report.Stats.AverageScore)
	for _, e := range report.History {
		fmt.Printf("%s  %3d%%  %-12s %s\n", e.LastUpdated.Format("2006-01-02"), e.Score, e.Status, e.Topic)
	}
	return nil
}

func runProgressExport(cmd *cobra.Command, _ []string) error {
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

	ctx := cmd.Context()
	profile, err := env.api.Profile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	report, err := env.api.Progress(ctx)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	export := model.ProgressExport{
		Student:    profile.Name,
		Email:      profile.Email,
		ExportedAt: time.Now().UTC(),
		Stats:      report.Stats,
		History:    report.History,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
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

	plan, err := env.api.Recommendation(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch study plan: %w", err)
	}
	fmt.Println(plan)
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
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

	ctx := cmd.Context()
	offline := appI18n.T(appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(v.GetString("lang"))), "ChatOffline")
	transcript := chat.NewTranscript(offline)

	fmt.Println("Chat with the AI tutor. Empty line to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		before := len(transcript.Messages())
		if err := transcript.Send(ctx, env.api, line); err != nil {
			slog.Warn("chat message failed", "error", err)
		}
		for _, m := range transcript.Messages()[before:] {
			if m.Sender == chat.SenderAI {
				fmt.Printf("%s: %s\n", m.Sender, m.Text)
			}
		}
	}
	return nil
}
