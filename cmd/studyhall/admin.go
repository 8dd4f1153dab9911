package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin operations",
	}
	cmd.AddCommand(adminStatsCmd(), adminUsersCmd(), adminDeleteUserCmd())
	return cmd
}

func adminStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show platform-wide counters",
		RunE:  runAdminStats,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func adminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List all accounts",
		RunE:  runAdminUsers,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func adminDeleteUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete an account permanently",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminDeleteUser,
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func runAdminStats(cmd *cobra.Command, _ []string) error {
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

	stats, err := env.api.AdminStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}

	fmt.Printf("Students: %d\nTeachers: %d\nCourses:  %d\nQuizzes:  %d\n",
		stats.TotalStudents, stats.TotalTeachers, stats.TotalModules, stats.TotalQuizzes)
	return nil
}

func runAdminUsers(cmd *cobra.Command, _ []string) error {
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

	users, err := env.api.Users(cmd.Context())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		fmt.Printf("%s  %-8s %-24s %s\n", u.ID, u.Role, u.Name, u.Email)
	}
	return nil
}

func runAdminDeleteUser(cmd *cobra.Command, args []string) error {
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

	if err := env.api.DeleteUser(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	fmt.Println("User deleted.")
	return nil
}
