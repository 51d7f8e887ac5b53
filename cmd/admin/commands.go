package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"cvbuilder/internal/auth"
	"cvbuilder/internal/config"
	"cvbuilder/internal/database"
	"cvbuilder/internal/export"
	"cvbuilder/internal/logging"
	"cvbuilder/internal/pdf"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/storage"
)

// env 在子命令执行前按需初始化。
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "cvbuilder operator commands",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newCreateUserCmd(), newRenderCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			if err := database.Migrate(cmd.Context(), e.db); err != nil {
				return err
			}
			e.logger.Info("database migrated")
			return nil
		},
	}
}

func newCreateUserCmd() *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account; a random password is printed when --password is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generated := password == ""
			if generated {
				var err error
				if password, err = auth.RandomPassword(); err != nil {
					return err
				}
			}

			e, err := setup()
			if err != nil {
				return err
			}
			user, err := auth.NewUsers(e.db).Create(cmd.Context(), email, strings.TrimSpace(name), password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created user #%d <%s>\n", user.ID, user.Email)
			if generated {
				fmt.Fprintf(out, "password: %s\n", password)
				fmt.Fprintln(out, "该密码仅显示一次，请妥善保存。")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "initial password, 8-72 bytes")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		profileID uint
		out       string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a profile to an HTML or PDF file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := strings.ToLower(filepath.Ext(out))
			if format != ".html" && format != ".pdf" {
				return fmt.Errorf("unsupported output %q: want .html or .pdf", out)
			}

			e, err := setup()
			if err != nil {
				return err
			}
			data, err := renderProfile(cmd.Context(), e, profileID, format == ".pdf")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().UintVar(&profileID, "profile", 0, "profile id (required)")
	cmd.Flags().StringVar(&out, "out", "", "output file, .html or .pdf (required)")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// renderProfile 以简历所有者身份渲染，不计入下载次数。
func renderProfile(ctx context.Context, e *env, profileID uint, asPDF bool) ([]byte, error) {
	var owner database.Profile
	err := e.db.WithContext(ctx).Select("id", "user_id").First(&owner, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("profile %d not found", profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var generator pdf.Generator
	if asPDF {
		if generator, err = pdf.New(e.cfg.PDF); err != nil {
			return nil, err
		}
	}

	opts := []export.Option{export.WithLogger(e.logger)}
	if store, err := storage.NewClient(e.cfg.MinIO); err != nil {
		e.logger.Warn("storage unavailable, rendering without photo", slog.Any("error", err))
	} else {
		opts = append(opts, export.WithPhotos(store))
	}
	exporter := export.New(profile.NewService(e.db), generator, opts...)

	html, _, err := exporter.RenderHTML(ctx, owner.UserID, owner.ID)
	if err != nil {
		return nil, err
	}
	if !asPDF {
		return []byte(html), nil
	}
	return exporter.Generate(ctx, html)
}
