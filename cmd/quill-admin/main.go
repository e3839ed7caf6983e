// Package main is the entry point for the Quill Notes admin CLI.
// This tool manages users directly against the store, primarily for
// bootstrapping the first account.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/prn-tf/quill-notes/internal/config"
	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/repository"
	"github.com/prn-tf/quill-notes/internal/repository/postgres"
	"github.com/prn-tf/quill-notes/internal/repository/sqlite"
	"github.com/prn-tf/quill-notes/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Quill Notes Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user subcommand required: create, list, delete")
	}

	ctx := context.Background()
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username for the new user")
		password := fs.String("password", "", "password for the new user")
		roles := fs.String("roles", "", "comma-separated roles (employee, manager, admin)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *username == "" || *password == "" {
			return fmt.Errorf("--username and --password are required")
		}

		userService, closeFn, err := newUserService(ctx, *configPath, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := userService.Create(ctx, service.CreateUserInput{
			Username: *username,
			Password: *password,
			Roles:    parseRoles(*roles),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created user %s with ID %s (roles: %v)\n", user.Username, user.ID, user.Roles)
		return nil

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		userService, closeFn, err := newUserService(ctx, *configPath, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		users, err := userService.List(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLES\tACTIVE\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%v\t%t\t%s\n",
				u.ID, u.Username, u.Roles, u.Active, u.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()

	case "delete":
		fs := flag.NewFlagSet("user delete", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		id := fs.String("id", "", "ID of the user to delete")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			return fmt.Errorf("--id is required")
		}

		userService, closeFn, err := newUserService(ctx, *configPath, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := userService.Delete(ctx, *id)
		if err != nil {
			return err
		}

		fmt.Printf("Deleted user %s with ID %s\n", user.Username, user.ID)
		return nil

	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

// newUserService opens the configured store and returns a UserService
// plus a close function for the underlying connection.
func newUserService(ctx context.Context, configPath string, logger zerolog.Logger) (*service.UserService, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var userRepo repository.UserRepository
	var closeFn func()

	switch cfg.Database.Driver {
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
		}
		userRepo = sqlite.NewUserRepository(db)
		closeFn = func() { _ = db.Close() }

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		userRepo = postgres.NewUserRepository(db)
		closeFn = func() { _ = db.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}

	return service.NewUserService(userRepo, cfg.Auth.BcryptCost, logger), closeFn, nil
}

// parseRoles splits a comma-separated role list.
func parseRoles(s string) []domain.Role {
	if s == "" {
		return nil
	}
	var roles []domain.Role
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			roles = append(roles, domain.Role(part))
		}
	}
	return roles
}

func printUsage() {
	fmt.Println(`Quill Notes Admin CLI

Usage:
  quill-admin <command> [arguments]

Commands:
  user        Manage users (create, list, delete)
  version     Print version information
  help        Show this help message

Examples:
  quill-admin user create --username admin --password secret123 --roles admin
  quill-admin user list
  quill-admin user delete --id <user-id>

Use "quill-admin user <subcommand> --help" for flag details.`)
}
