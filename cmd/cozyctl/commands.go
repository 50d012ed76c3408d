package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := ctx.operator()
			if err != nil {
				return err
			}
			applied, err := op.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "Applied %s\n", name)
			}
			return nil
		},
	}
}

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Apply a user's saved-generation limit now",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			op, err := ctx.operator()
			if err != nil {
				return err
			}
			res, err := op.Prune(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d generation(s), removed %d object(s)\n", res.Pruned, res.HardDeleted)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User ID (UUID)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Retry storage removal for a user's deleted generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			op, err := ctx.operator()
			if err != nil {
				return err
			}
			n, err := op.Sweep(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d object(s)\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User ID (UUID)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newUsageCommand(ctx *commandContext) *cobra.Command {
	usageCmd := &cobra.Command{
		Use:   "usage",
		Short: "Inspect and override monthly usage",
	}
	usageCmd.AddCommand(newUsageSetCommand(ctx))
	return usageCmd
}

func newUsageSetCommand(ctx *commandContext) *cobra.Command {
	var (
		user string
		used int
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a user's monthly generation count",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			if used < 0 {
				return fmt.Errorf("--used must not be negative")
			}
			op, err := ctx.operator()
			if err != nil {
				return err
			}
			if err := op.SetUsage(cmd.Context(), userID, used); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Usage for %s set to %d\n", userID, used)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User ID (UUID)")
	cmd.Flags().IntVar(&used, "used", 0, "Generations used this month")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("used")
	return cmd
}
