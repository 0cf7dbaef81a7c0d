package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/events"
	"github.com/pticket/helpdesk/internal/identity"
	"github.com/pticket/helpdesk/internal/observability"
	"github.com/pticket/helpdesk/internal/persistence"
	"github.com/pticket/helpdesk/internal/repository"
	"github.com/pticket/helpdesk/internal/service"
)

// runtime carries the shared wiring for all admin commands.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func main() {
	root := &cobra.Command{
		Use:           "helpdesk-admin",
		Short:         "Operational commands for the helpdesk service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(seedCommand())
	root.AddCommand(runRemindersCommand())
	root.AddCommand(testEmailCommand())
	root.AddCommand(normalizeIdentifiersCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	return &runtime{cfg: cfg, logger: logger, pg: pg}, nil
}

func (rt *runtime) close() {
	rt.pg.Close()
	_ = rt.logger.Sync()
}

// seedCommand creates the administrator account if it does not exist yet.
func seedCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			users := repository.NewUserRepository(rt.pg.PoolHandle())
			if existing, err := users.GetByAdminUsername(ctx, username); err == nil && existing != nil {
				rt.logger.Info("administrator already exists", zap.String("username", username))
				return nil
			}

			hash, err := auth.HashPassword(password, rt.cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			admin := &domain.User{
				FirstName:         "System",
				LastName:          "Administrator",
				Role:              domain.RoleITManager,
				DepartmentRole:    domain.DepartmentRoleManager,
				AdminUsername:     &username,
				AdminPasswordHash: &hash,
				IsActive:          true,
				IsAdmin:           true,
			}
			if err := users.Create(ctx, admin); err != nil {
				return err
			}
			rt.logger.Info("administrator created", zap.String("username", username))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "administrator username")
	cmd.Flags().StringVar(&password, "password", "", "administrator password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// runRemindersCommand runs one reminder sweep from the shell, useful for
// verifying SMTP settings and deadline windows without waiting for the worker.
func runRemindersCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run-reminders",
		Short: "Run one deadline reminder sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			pool := rt.pg.PoolHandle()
			emailConfigRepo := repository.NewEmailConfigRepository(pool)
			mailer := service.NewSMTPMailer(emailConfigRepo, rt.cfg.SMTP, rt.logger)
			reminders := service.NewReminderService(service.ReminderDependencies{
				TaskRepo:   repository.NewTaskRepository(pool),
				UserRepo:   repository.NewUserRepository(pool),
				Mailer:     mailer,
				Dispatcher: events.NewInMemoryDispatcher(),
				Metrics:    observability.NewMetrics(),
				Logger:     rt.logger,
			})

			result, err := reminders.Sweep(ctx, dryRun)
			if err != nil {
				return err
			}
			fmt.Printf("scanned=%d sent_8h=%d sent_2h=%d failed=%d skipped=%d dry_run=%v\n",
				result.Scanned, result.Sent8h, result.Sent2h, result.Failed, result.Skipped, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without sending or marking")
	return cmd
}

// testEmailCommand sends a test email through the active SMTP settings.
func testEmailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-email <recipient>",
		Short: "Send a test email through the active SMTP settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			emailConfigRepo := repository.NewEmailConfigRepository(rt.pg.PoolHandle())
			mailer := service.NewSMTPMailer(emailConfigRepo, rt.cfg.SMTP, rt.logger)

			body := service.RenderRTLEmail("ایمیل آزمایشی", []string{
				"این یک ایمیل آزمایشی از سامانه تیکتینگ است.",
			})
			if err := mailer.Send(ctx, []string{args[0]}, "ایمیل آزمایشی", body); err != nil {
				return err
			}
			fmt.Println("sent to", args[0])
			return nil
		},
	}
	return cmd
}

// normalizeIdentifiersCommand rewrites stored national ids and employee
// codes to ASCII digits. Data imported from spreadsheets occasionally
// carries Persian digits; login normalizes its input, so stored values must
// match.
func normalizeIdentifiersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize-identifiers",
		Short: "Rewrite stored national ids and employee codes to ASCII digits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			users := repository.NewUserRepository(rt.pg.PoolHandle())
			list, err := users.List(ctx, repository.UserFilter{})
			if err != nil {
				return err
			}

			changed := 0
			for i := range list {
				user := &list[i]
				nationalID := identity.NormalizeNationalID(user.NationalID)
				employeeCode := identity.NormalizeEmployeeCode(user.EmployeeCode)
				if nationalID == user.NationalID && employeeCode == user.EmployeeCode {
					continue
				}
				user.NationalID = nationalID
				user.EmployeeCode = employeeCode
				if err := users.Update(ctx, user); err != nil {
					return fmt.Errorf("update %s: %w", user.ID, err)
				}
				changed++
			}
			fmt.Printf("normalized %d of %d users\n", changed, len(list))
			return nil
		},
	}
	return cmd
}
