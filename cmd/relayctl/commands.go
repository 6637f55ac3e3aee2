package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/auth"
	"github.com/arnavshah/shift-relay-go/pkg/client"
	"github.com/arnavshah/shift-relay-go/pkg/dashboard"
	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
)

func dashboardOptions(board bool) ([]dashboard.Option, error) {
	loc, err := app.cfg.Location()
	if err != nil {
		return nil, err
	}
	opts := []dashboard.Option{
		dashboard.WithLogger(app.logger),
		dashboard.WithNotifyMinutes(app.cfg.NotifyMinutesBefore),
		dashboard.WithClock(func() time.Time { return time.Now().In(loc) }),
	}
	if board {
		opts = append(opts, dashboard.WithBoard())
	}
	return opts, nil
}

func watchCmd() *cobra.Command {
	var (
		board    bool
		as       string
		password string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the live relay, refreshing every second",
		Long: `Show the live relay, refreshing every second. With --as the employee is
logged in first and logged out on exit, freezing their progress if they
hold the active shift.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			opts, err := dashboardOptions(board)
			if err != nil {
				return err
			}

			var holder string
			if as != "" {
				res, err := app.client.Login(app.ctx, as, password)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				if res.User.Role == models.RoleMaster {
					opts = append(opts, dashboard.WithBoard())
				} else {
					holder = res.User.Name
					if res.ResumeInfo != nil {
						opts = append(opts, dashboard.WithResume(presence.NewResumeEvent(res.User.Name, *res.ResumeInfo, time.Now())))
					}
				}
			}

			d := dashboard.New(app.client, os.Stdout, opts...)
			if holder != "" {
				defer func() {
					if logoutErr := logoutOnExit(holder, d.Schedule()); logoutErr != nil && err == nil {
						err = logoutErr
					}
				}()
			}
			return d.Run(app.ctx)
		},
	}
	cmd.Flags().BoolVar(&board, "board", false, "Show every employee (master view)")
	cmd.Flags().StringVar(&as, "as", "", "Log in as this employee while watching")
	cmd.Flags().StringVar(&password, "password", "", "Password for --as")
	return cmd
}

// logoutOnExit logs name out with the progress computed from cached, the
// schedule that was on screen. Without one the schedule is fetched. It uses
// a fresh context since the command context is already cancelled by the
// time the watch loop returns.
func logoutOnExit(name string, cached []models.ShiftDefinition) error {
	loc, err := app.cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
	defer cancel()

	sched := cached
	if len(sched) == 0 {
		fetched, err := app.client.Schedule(ctx)
		if err != nil {
			app.logger.Warn("Could not fetch schedule for logout", zap.Error(err))
		}
		sched = fetched
	}

	progress, active := dashboard.LogoutProgress(time.Now().In(loc), name, sched)
	if _, err := app.client.Logout(ctx, name, &progress, active); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	fmt.Printf("\nLogged out %s\n", name)
	return nil
}

func statusCmd() *cobra.Command {
	var board bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the relay status once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := dashboardOptions(board)
			if err != nil {
				return err
			}
			d := dashboard.New(app.client, os.Stdout, opts...)
			d.RefreshSchedule(app.ctx)
			return d.Render(d.Tick(app.ctx))
		},
	}
	cmd.Flags().BoolVar(&board, "board", false, "Show every employee (master view)")
	return cmd
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <name> <password>",
		Short: "Log an employee in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.client.Login(app.ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Printf("Logged in %s (%s)\n", res.User.Name, res.User.Role)
			if res.ResumeInfo != nil {
				event := presence.NewResumeEvent(res.User.Name, *res.ResumeInfo, time.Now())
				fmt.Printf("Welcome back: away %s, resuming from %.1f%%\n",
					schedule.FormatDuration(event.GapMs), event.PausedProgress*100)
			}
			printState(res.State)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	var (
		progress string
		active   bool
	)
	cmd := &cobra.Command{
		Use:   "logout <name>",
		Short: "Log an employee out",
		Long: `Log an employee out. Without --progress the progress and active flag are
computed from today's schedule.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if progress == "" {
				return logoutOnExit(name, nil)
			}

			p, err := strconv.ParseFloat(progress, 64)
			if err != nil {
				return fmt.Errorf("progress must be a number: %w", err)
			}
			snap, err := app.client.Logout(app.ctx, name, &p, active)
			if err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			printState(snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&progress, "progress", "", "Shift progress in [0,1]")
	cmd.Flags().BoolVar(&active, "active", false, "The employee holds the active shift")
	return cmd
}

func employeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := app.client.Employees(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list employees: %w", err)
			}

			fmt.Printf("\nFound %d employees:\n\n", len(employees))
			for _, e := range employees {
				fmt.Printf("- %s (%s) %s\n", e.Name, e.Role, e.Email)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an employee and drop their presence state (needs --token)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.DeleteEmployee(app.ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete employee: %w", err)
			}
			fmt.Printf("Deleted %s\n", models.NormalizeName(args[0]))
			return nil
		},
	})
	return cmd
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <name>",
		Short: "Sign a master token locally with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := auth.NewSigner(app.cfg.JWTSecret).CreateToken(models.Employee{
				Name: models.NormalizeName(args[0]),
				Role: models.RoleMaster,
			})
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Printf("Generated master token for %s:\n%s\n", models.NormalizeName(args[0]), signed)
			return nil
		},
	}
}

func printState(s presence.Snapshot) {
	fmt.Printf("Online: %v\n", s.LoggedInEmployees)
	for name, rec := range s.PauseState {
		fmt.Printf("Paused: %s at %.1f%% since %s\n",
			name, rec.PausedProgress*100, time.UnixMilli(rec.PausedAtTime).Format("15:04:05"))
	}
}
