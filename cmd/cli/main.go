// Command cli runs back-office ledger operations against the configured
// database: migrations, admin promotion and profit runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/demonyhq/demony/infra"
	"github.com/demonyhq/demony/infra/initializer"
	"github.com/demonyhq/demony/pkg/app"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  migrate                                   apply database migrations
  create-admin <name> <email>               create an admin (prompts for password)
  make-admin <email>                        promote an existing user to admin
  distribute <project_id> <gross> [run_id]  credit a profit run to investors
  run <run_id>                              list the credits of a profit run
  audit-splits                              report distributions by investor share`

var (
	ok   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warn = color.New(color.FgYellow).SprintFunc()
	fail = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, fail("error:"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	if cmd == "migrate" {
		db := *cfg.DB
		db.AutoMigrate = true
		if _, err := infra.NewDBConnection(&db, cfg.Env); err != nil {
			return err
		}
		fmt.Println(ok("migrations applied"))
		return nil
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	a := app.New(deps, cfg)
	code := deps.Policy.Currency

	switch cmd {
	case "create-admin":
		if len(args) < 2 {
			return errors.New("usage: create-admin <name> <email>")
		}
		password, err := readPassword()
		if err != nil {
			return err
		}
		if _, err := a.UserService.Signup(ctx, args[0], args[1], password, user.RoleInvestor); err != nil {
			return err
		}
		u, err := a.UserService.MakeAdmin(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s (%s)\n", ok("admin created:"), u.Email, u.ID)
	case "make-admin":
		if len(args) < 1 {
			return errors.New("usage: make-admin <email>")
		}
		u, err := a.UserService.MakeAdmin(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s is now %s\n", ok("done:"), u.Email, u.Role)
	case "distribute":
		if len(args) < 2 {
			return errors.New("usage: distribute <project_id> <gross> [run_id]")
		}
		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id: %w", err)
		}
		gross, err := money.Parse(args[1], code)
		if err != nil {
			return err
		}
		runID := ""
		if len(args) > 2 {
			runID = args[2]
		}
		sum, err := a.ProfitService.Distribute(ctx, projectID, gross.Amount(), runID, "cli distribution")
		if sum != nil {
			fmt.Printf("run %s: pool %s, fee %s, credited %d (%s), skipped %d\n",
				sum.RunID,
				money.MustFromMinor(sum.InvestorPool, code),
				money.MustFromMinor(sum.PlatformFee, code),
				sum.Credited,
				money.MustFromMinor(sum.CreditedTotal, code),
				sum.Skipped,
			)
		}
		if err != nil {
			if sum != nil {
				fmt.Println(warn("run incomplete; retry with run id " + sum.RunID))
			}
			return err
		}
		fmt.Println(ok("distribution complete"))
	case "run":
		if len(args) < 1 {
			return errors.New("usage: run <run_id>")
		}
		ds, err := a.ProfitService.Run(ctx, args[0])
		if err != nil {
			return err
		}
		for _, d := range ds {
			fmt.Printf("%s  %s  %s%%  %s\n", d.UserID, d.InvestmentID, d.OwnershipPercent, money.MustFromMinor(d.Amount, code))
		}
		fmt.Printf("%d credits\n", len(ds))
	case "audit-splits":
		audit, err := a.ProfitService.AuditSplits(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("default investor share: %s%%\n", audit.DefaultShare)
		for _, s := range audit.Splits {
			line := fmt.Sprintf("%6s%%  runs=%d  credits=%d  total=%s",
				s.InvestorSharePercent, s.Runs, s.Distributions, money.MustFromMinor(s.Total, code))
			if !s.InvestorSharePercent.Equal(audit.DefaultShare) {
				line = warn(line)
			}
			fmt.Println(line)
		}
		if len(audit.Divergent) > 0 {
			fmt.Println(warn(fmt.Sprintf("%d split(s) differ from the default", len(audit.Divergent))))
		}
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimSpace(string(raw))
	if len(password) < 6 {
		return "", errors.New("password must be at least 6 characters")
	}
	return password, nil
}
