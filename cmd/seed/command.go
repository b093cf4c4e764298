package main

import (
	"context"
	"fmt"
	"time"

	"job-tracker-backend/config"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/repository/store"
	"job-tracker-backend/internal/usecase"
	"job-tracker-backend/pkg/logger"
	"job-tracker-backend/pkg/security"
	"job-tracker-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

// Command is the root of the seed CLI. Storage settings come from the same
// environment variables as the API server.
func Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "seed",
		Short: "Populate the job tracker database",
	}
	root.AddCommand(jobsCommand(), credentialCommand())
	return root
}

func jobsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Insert the sample job applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			return withStore(cmd.Context(), func(cfg *config.Config, st *store.Store) error {
				validate := validator.New()
				validation.RegisterValidators(validate)
				jobUC := usecase.NewJobUsecase(st.Jobs, validate)

				for _, job := range sampleJobs() {
					if err := jobUC.CreateJob(cmd.Context(), &job); err != nil {
						return fmt.Errorf("insert %q at %s: %w", job.Title, job.CompanyName, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "inserted job %d: %s at %s\n", job.ID, job.Title, job.CompanyName)
				}
				return nil
			})
		},
	}
}

func credentialCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Store the initial password (shared secret or a user account)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			return withStore(cmd.Context(), func(cfg *config.Config, st *store.Store) error {
				tokens, err := security.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
				if err != nil {
					return err
				}
				authUC := usecase.NewAuthUsecase(st.Credentials, security.NewPasswordHasher(cfg.BcryptCost), tokens, nil, cfg.SharedSecret())

				if err := authUC.SeedCredential(cmd.Context(), email, password); err != nil {
					return err
				}
				if cfg.SharedSecret() {
					fmt.Fprintln(cmd.OutOrStdout(), "shared password stored")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "credential stored for %s\n", email)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (per_user mode)")
	cmd.Flags().StringVar(&password, "password", "", "plaintext password to hash and store")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func withStore(ctx context.Context, fn func(cfg *config.Config, st *store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(cfg, st)
}

func sampleJobs() []domain.JobApplication {
	date := func(s string) *string { return &s }
	return []domain.JobApplication{
		{
			Title:             "Software Engineer",
			CompanyName:       "Google",
			ApplicationDate:   "2025-01-01",
			ApplicationStatus: domain.StatusSubmitted,
			InterviewDate:     date("2025-01-10"),
			Skills:            []string{"JavaScript", "React", "Node.js"},
			ContactName:       "George Harrison",
			ContactEmail:      "GeorgeHarrison@gmail.com",
			ContactPhone:      "555-1234-6666",
		},
		{
			Title:             "Data Scientist",
			CompanyName:       "Meta",
			ApplicationDate:   "2025-01-03",
			ApplicationStatus: domain.StatusInReview,
			InterviewDate:     date("2025-01-12"),
			Skills:            []string{"Python", "Machine Learning", "SQL"},
			ContactName:       "John Lennon",
			ContactEmail:      "john.lennon@meta.com",
			ContactPhone:      "555-5678-1111",
		},
		{
			Title:             "Backend Developer",
			CompanyName:       "Amazon",
			ApplicationDate:   "2025-01-05",
			ApplicationStatus: domain.StatusInterviewScheduled,
			InterviewDate:     date("2025-01-15"),
			Skills:            []string{"Java", "Spring Boot", "AWS"},
			ContactName:       "Ringo Starr",
			ContactEmail:      "Ringo@amazon.com",
			ContactPhone:      "555-9876-2321",
		},
	}
}
