package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/quizlab-backend/internal/app"
	"github.com/yungbote/quizlab-backend/internal/grading"
	"github.com/yungbote/quizlab-backend/internal/identity"
	"github.com/yungbote/quizlab-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/envutil"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/services"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// newGradeCmd grades one answer with the local tiers only, which makes it
// handy for checking lexicon changes.
func newGradeCmd() *cobra.Command {
	var (
		question, expected, answer, lexiconPath string
		strict                                  bool
	)
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade an answer with the local grading tiers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.LoadEnvFile()
			log, err := logger.New(envutil.String("LOG_MODE", "development"))
			if err != nil {
				return err
			}
			defer log.Sync()
			lexicon := grading.DefaultLexicon()
			if lexiconPath != "" {
				if lexicon, err = grading.LoadLexicon(lexiconPath); err != nil {
					return err
				}
			}
			g := grading.NewGrader(log, nil, grading.WithLexicon(lexicon))
			res := g.Grade(cmd.Context(), question, expected, answer, grading.Options{StrictOverride: strict})
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&question, "question", "", "question text")
	cmd.Flags().StringVar(&expected, "expected", "", "expected answer")
	cmd.Flags().StringVar(&answer, "answer", "", "user answer")
	cmd.Flags().StringVar(&lexiconPath, "lexicon", os.Getenv("GRADING_LEXICON_PATH"), "grading lexicon YAML")
	cmd.Flags().BoolVar(&strict, "strict", false, "require normalized equality")
	_ = cmd.MarkFlagRequired("expected")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func newCleanupGuestsCmd() *cobra.Command {
	var (
		age        time.Duration
		maxDeletes int
	)
	cmd := &cobra.Command{
		Use:   "cleanup-guests",
		Short: "Delete stale anonymous identities and everything they own",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if !cmd.Flags().Changed("age") {
					age = a.Cfg.GuestMaxAge
				}
				if !cmd.Flags().Changed("max") {
					maxDeletes = a.Cfg.GuestMaxDeletes
				}
				res, err := a.Services.Accounts.CleanupGuests(ctx, age, maxDeletes)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().DurationVar(&age, "age", 24*time.Hour, "minimum guest age")
	cmd.Flags().IntVar(&maxDeletes, "max", 200, "maximum identities to delete")
	return cmd
}

func newIndexCmd() *cobra.Command {
	var userID, fileID string
	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Chunk, embed and store a text file for document-grounded generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: uid})
				res, err := a.Services.Sources.Index(dbctx.Context{Ctx: ctx}, services.IndexInput{
					Text:     string(raw),
					FileID:   fileID,
					FileName: filepath.Base(args[0]),
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owning identity id")
	cmd.Flags().StringVar(&fileID, "file-id", "", "file id (generated when empty)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// newTokenCmd mints a development token signed with JWT_SECRET_KEY.
func newTokenCmd() *cobra.Command {
	var (
		userID, email string
		anonymous     bool
		ttl           time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed development token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.LoadEnvFile()
			secret := envutil.String("JWT_SECRET_KEY", "")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET_KEY is not set")
			}
			id := uuid.New()
			if userID != "" {
				var err error
				if id, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			caller := identity.Caller{ID: id, Email: email, Provider: "email", IsAnonymous: anonymous}
			if anonymous {
				caller.Provider = identity.ProviderAnonymous
				caller.Email = ""
			}
			tok, err := identity.NewVerifier(secret).Sign(caller, jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "identity id (random when empty)")
	cmd.Flags().StringVar(&email, "email", "dev@example.com", "email claim")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "mint a guest token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
