package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mkarpov/studyhall/internal/model"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the platform and store the credential",
		RunE:  runLogin,
	}
	f := cmd.Flags()
	f.StringP("email", "e", "", "Account email (required)")
	f.String("password", "", "Account password (prompted when omitted)")
	addClientFlags(f)
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored credential",
		RunE:  runLogout,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE:  runRegister,
	}
	f := cmd.Flags()
	f.String("name", "", "Full name (required)")
	f.StringP("email", "e", "", "Account email (required)")
	f.String("password", "", "Account password (prompted when omitted)")
	f.String("role", "Student", "Account role (Student, Teacher)")
	addClientFlags(f)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE:  runWhoami,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

// readPassword takes the password from the flag or prompts for it without
// echo when stdin is a terminal.
func readPassword(v *viper.Viper) (string, error) {
	if p := v.GetString("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	env, err := newClientEnv(v)
	if err != nil {
		return err
	}
	defer env.Close()

	password, err := readPassword(v)
	if err != nil {
		return err
	}

	result, err := env.api.Login(cmd.Context(), v.GetString("email"), password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	route, err := env.sess.Login(result.Token, result.User)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	fmt.Printf("Logged in as %s (%s). Dashboard: %s\n", result.User.Name, result.User.Role, route)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	env, err := newClientEnv(v)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.sess.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	env, err := newClientEnv(v)
	if err != nil {
		return err
	}
	defer env.Close()

	var role model.Role
	switch strings.ToLower(v.GetString("role")) {
	case "student":
		role = model.RoleStudent
	case "teacher":
		role = model.RoleTeacher
	default:
		return fmt.Errorf("role must be Student or Teacher, got %q", v.GetString("role"))
	}

	password, err := readPassword(v)
	if err != nil {
		return err
	}

	if err := env.api.Register(cmd.Context(), v.GetString("name"), v.GetString("email"), password, role); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Println("Account created. Run `studyhall login` to sign in.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	env, err := newClientEnv(v)
	if err != nil {
		return err
	}
	defer env.Close()

	id := env.sess.Current()
	if id == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("Subject: %s\nRole:    %s\n", id.Subject, id.Role)
	if profile, err := env.api.Profile(cmd.Context()); err == nil {
		fmt.Printf("Name:    %s\nEmail:   %s\n", profile.Name, profile.Email)
	}
	return nil
}
