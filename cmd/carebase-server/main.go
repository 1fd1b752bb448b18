package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carebase/carebase/internal/config"
	"github.com/carebase/carebase/internal/domain/benefit"
	"github.com/carebase/carebase/internal/domain/billing"
	"github.com/carebase/carebase/internal/domain/encounter"
	"github.com/carebase/carebase/internal/domain/program"
	"github.com/carebase/carebase/internal/platform/audit"
	"github.com/carebase/carebase/internal/platform/auth"
	"github.com/carebase/carebase/internal/platform/db"
	"github.com/carebase/carebase/internal/platform/middleware"
)

// EnrollmentCheckerAdapter adapts the program service to the
// benefit.EnrollmentChecker interface, avoiding circular imports between
// the benefit and program packages.
type EnrollmentCheckerAdapter struct {
	svc *program.Service
}

func (a *EnrollmentCheckerAdapter) ActiveEnrollment(ctx context.Context, participantID, programID uuid.UUID) (uuid.UUID, bool, error) {
	e, err := a.svc.GetActiveEnrollment(ctx, participantID, programID)
	if err != nil {
		return uuid.Nil, false, err
	}
	if e == nil {
		return uuid.Nil, false, nil
	}
	return e.ID, true, nil
}

// ServiceLineWriterAdapter adapts the billing generator to the
// benefit.ServiceLineWriter interface.
type ServiceLineWriterAdapter struct {
	gen *billing.Generator
}

func (a *ServiceLineWriterAdapter) WriteLines(ctx context.Context, encounterID uuid.UUID, codes []string) error {
	_, err := a.gen.Save(ctx, encounterID, codes)
	return err
}

// EncounterSourceAdapter resolves an encounter to the billing context the
// generator needs by walking encounter -> enrollment -> program.
type EncounterSourceAdapter struct {
	encounters *encounter.Service
	programs   *program.Service
}

func (a *EncounterSourceAdapter) EncounterInfo(ctx context.Context, encounterID uuid.UUID) (*billing.EncounterInfo, error) {
	e, err := a.encounters.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	enrollment, err := a.programs.GetEnrollment(ctx, e.ProgramEnrollmentID)
	if err != nil {
		return nil, err
	}
	p, err := a.programs.GetProgram(ctx, enrollment.ProgramID)
	if err != nil {
		return nil, err
	}
	return &billing.EncounterInfo{
		NoteType:        e.NoteType,
		ProgramName:     p.Name,
		ProgramCategory: p.Category,
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "carebase-server",
		Short: "Benefit disbursement and billing API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	auditLog := audit.NewLogger(logger, audit.NewPgRecorder(pool), cfg.AuditBuffer)
	defer auditLog.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	apiV1.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeout) * time.Second))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Program domain
	programSvc := program.NewService(
		program.NewPgProgramRepository(pool),
		program.NewPgEnrollmentRepository(pool),
		logger,
	)
	program.NewHandler(programSvc).RegisterRoutes(apiV1)

	// Encounter domain
	encounterSvc := encounter.NewService(encounter.NewPgRepository(pool), logger)
	encounter.NewHandler(encounterSvc).RegisterRoutes(apiV1)

	// Billing domain
	lineRepo := billing.NewPgServiceLineRepository(pool)
	generator := billing.NewGenerator(lineRepo, &EncounterSourceAdapter{
		encounters: encounterSvc,
		programs:   programSvc,
	}, logger)
	billingSvc := billing.NewService(lineRepo, logger)
	billing.NewHandler(generator, billingSvc, auditLog).RegisterRoutes(apiV1)

	// Benefit domain
	benefitRepo := benefit.NewPgBenefitRepository(pool)
	assignmentRepo := benefit.NewPgAssignmentRepository(pool)
	disbursementRepo := benefit.NewPgDisbursementRepository(pool)
	resolver := benefit.NewResolver(benefitRepo, assignmentRepo, &EnrollmentCheckerAdapter{svc: programSvc}, logger)
	engine := benefit.NewEngine(
		resolver,
		benefitRepo,
		disbursementRepo,
		programSvc,
		encounterSvc,
		&ServiceLineWriterAdapter{gen: generator},
		logger,
	)
	benefitSvc := benefit.NewService(benefitRepo, assignmentRepo, disbursementRepo)
	benefit.NewHandler(benefitSvc, resolver, engine, programSvc, auditLog).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
