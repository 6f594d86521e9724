package main

import (
	"bufio"
	"easystay-service/internal"
	postgres_adapter "easystay-service/internal/adapters/postgres"
	"easystay-service/internal/configs"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "easystay",
		Short:         "Vacation rental search backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envPath, "env", "", "path to .env file (default: ./.env)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSchemaCmd(opts),
		newHashPasswordCmd(),
	)
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and reservation event listener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := configs.LoadConfig(opts.envPath)
			if err != nil {
				return fmt.Errorf("error loading application configuration: %w", err)
			}

			application, err := internal.NewApp(appConfig)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the schema DDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), postgres_adapter.SchemaDDL())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := configs.LoadConfig(opts.envPath)
			if err != nil {
				return fmt.Errorf("error loading application configuration: %w", err)
			}

			logger, fluentClient, err := internal.NewLogger(appConfig)
			if err != nil {
				return err
			}
			if fluentClient != nil {
				defer fluentClient.Close()
			}
			logger = logger.WithFields(port.Fields{"component": "schema"})

			pool, err := internal.NewDBPool(cmd.Context(), appConfig)
			if err != nil {
				logger.Error("Failed to connect to PostgreSQL", err, nil)
				return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
			}
			defer pool.Close()

			if err := postgres_adapter.ApplySchema(cmd.Context(), pool); err != nil {
				logger.Error("Failed to apply schema", err, nil)
				return err
			}
			logger.Info("Schema applied", nil)
			return nil
		},
	})

	return cmd
}

// newHashPasswordCmd печатает bcrypt-хэш для заведения партнера вручную
func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for an affiliate password (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			hash, err := domain.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
