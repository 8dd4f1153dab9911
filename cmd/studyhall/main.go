package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mkarpov/studyhall/internal/api"
	"github.com/mkarpov/studyhall/internal/dashboard"
	appI18n "github.com/mkarpov/studyhall/internal/i18n"
	"github.com/mkarpov/studyhall/internal/session"
	"github.com/mkarpov/studyhall/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studyhall",
		Short: "Client for the StudyHall AI-assisted learning platform",
	}

	serve := serveCmd()
	root.AddCommand(
		serve,
		loginCmd(), logoutCmd(), registerCmd(), whoamiCmd(),
		quizCmd(), coursesCmd(), enrollCmd(), profileCmd(), progressCmd(), recommendCmd(), chatCmd(),
		teacherCmd(),
		adminCmd(),
	)

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `studyhall --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser dashboard on a local address",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", "127.0.0.1:3000", "HTTP listen address for the dashboard")
	addClientFlags(f)
	return cmd
}

// addClientFlags registers the flags every command that talks to the platform
// needs: where the API lives, where local state is kept, and logging.
func addClientFlags(f *pflag.FlagSet) {
	f.StringP("server", "s", "http://localhost:5000/api", "Platform API base URL")
	f.String("state", "", "Local state database path (default ~/.local/state/studyhall/state.db)")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("STUDYHALL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("studyhall")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/studyhall")
	v.AddConfigPath("/etc/studyhall")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// clientEnv is the wiring shared by every command: local state, the restored
// session and an API client bound to it.
type clientEnv struct {
	db   *store.Store
	sess *session.Manager
	api  *api.Client
}

func (e *clientEnv) Close() {
	_ = e.db.Close()
}

// newClientEnv opens the state database, restores the session from the
// persisted credential and builds an API client that sends it.
func newClientEnv(v *viper.Viper) (*clientEnv, error) {
	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}

	statePath, err := resolveStatePath(v.GetString("state"))
	if err != nil {
		return nil, err
	}
	db, err := store.New(statePath)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	sess := session.New(db, nil)
	if err := sess.Initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return &clientEnv{
		db:   db,
		sess: sess,
		api:  api.New(v.GetString("server"), sess),
	}, nil
}

// resolveStatePath falls back to ~/.local/state/studyhall/state.db and makes
// sure the directory exists.
func resolveStatePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".local", "state", "studyhall")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return filepath.Join(dir, "state.db"), nil
}

// requireLogin fails with a hint when no valid credential is held.
func (e *clientEnv) requireLogin() error {
	if e.sess.Current() == nil {
		return fmt.Errorf("not logged in: run `studyhall login` first")
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	env, err := newClientEnv(v)
	if err != nil {
		return err
	}
	defer env.Close()

	lang := v.GetString("lang")
	h, err := dashboard.New(env.api, env.sess, lang)
	if err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting dashboard",
		"addr", addr,
		"server", v.GetString("server"),
		"lang", lang,
	)
	return http.ListenAndServe(addr, r)
}
