package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/internal/auth"
	"coursehub/internal/config"
	"coursehub/internal/db"
	"coursehub/internal/logging"
	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/internal/service"
)

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Prepare the CourseHub database",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the users, admins, courses, assignments and quizzes tables",
	RunE:  runMigrate,
}

var createAccountCmd = &cobra.Command{
	Use:   "create-account",
	Short: "Create a user or admin account",
	Long: `Create an account the same way the signup form does: the password is
hashed with bcrypt before the row is inserted.

Examples:
  seed create-account --role admin --username alice --password s3cret
  seed create-account --role user --username bob --password hunter2 --email bob@example.com`,
	RunE: runCreateAccount,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAccountCmd)

	createAccountCmd.Flags().String("role", string(model.RoleUser), "Account role (user or admin)")
	createAccountCmd.Flags().String("username", "", "Username")
	createAccountCmd.Flags().String("password", "", "Password")
	createAccountCmd.Flags().String("email", "", "Email address")
	_ = createAccountCmd.MarkFlagRequired("username")
	_ = createAccountCmd.MarkFlagRequired("password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, err
	}
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		_ = db.Close(gormDB)
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, logger, gormDB, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, logger, gormDB, err := setup()
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	logger.Info("database migrations completed")
	return nil
}

func runCreateAccount(cmd *cobra.Command, args []string) error {
	roleFlag, _ := cmd.Flags().GetString("role")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	email, _ := cmd.Flags().GetString("email")

	role := model.Role(roleFlag)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q (want %s or %s)", roleFlag, model.RoleUser, model.RoleAdmin)
	}

	cfg, logger, gormDB, err := setup()
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	// Signup never touches sessions.
	sessions := auth.NewManager(auth.NewMemoryStore(), auth.ManagerConfig{})
	authService := service.NewAuthService(
		repository.NewAccountRepository(gormDB),
		auth.NewBcryptHasher(cfg.BcryptCost),
		sessions,
		logger,
		cfg.StoreTimeout,
	)

	if _, err := authService.Signup(context.Background(), role, username, password, email); err != nil {
		return fmt.Errorf("create %s %q: %w", role, username, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s account %q\n", role, username)
	return nil
}
