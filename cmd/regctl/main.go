// Command regctl is the operator tool for the registration service. It issues
// invitations and mints staff bearer tokens.
//
//	regctl invite -event <event-id> -email <address>
//	regctl token -subject <staff-id> [-ttl 12h]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"guestregistration/config"
	"guestregistration/internal/adapters/auth"
	"guestregistration/internal/domain"
	"guestregistration/internal/repository/postgres"
	"guestregistration/internal/services"
)

func main() {
	logger := config.NewLogger()
	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "regctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: regctl <invite|token> [flags]")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	switch args[0] {
	case "invite":
		return runInvite(ctx, cfg, args[1:], out, logger)
	case "token":
		return runToken(cfg, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runInvite(ctx context.Context, cfg *config.Config, args []string, out io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("invite", flag.ContinueOnError)
	eventID := fs.String("event", "", "event ID the invitation admits to")
	email := fs.String("email", "", "guest email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *eventID == "" || *email == "" {
		return fmt.Errorf("invite: -event and -email are required")
	}
	if cfg.StoreDriver != "postgres" {
		return fmt.Errorf("invite: requires STORE_DRIVER=postgres")
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	ledger := services.NewInvitationLedger(cfg.InvitationTTL)
	inv, err := issueInvitation(ctx, postgres.NewUnitOfWork(db), ledger, *eventID, *email)
	if err != nil {
		return err
	}
	logger.Info("invitation issued", "event_id", inv.EventID, "email", inv.Email, "expires_at", inv.ExpiresAt)
	_, err = fmt.Fprintln(out, cfg.InvitationBaseURL+inv.Token)
	return err
}

func issueInvitation(ctx context.Context, uow domain.UnitOfWork, ledger *services.InvitationLedger, eventID, email string) (*domain.Invitation, error) {
	var inv *domain.Invitation
	err := uow.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		var err error
		inv, err = ledger.Issue(ctx, st.Invitations(), eventID, email)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("invite: %w", err)
	}
	return inv, nil
}

func runToken(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "", "staff member identifier")
	ttl := fs.Duration("ttl", 12*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return fmt.Errorf("token: -subject is required")
	}
	if *ttl <= 0 {
		return fmt.Errorf("token: -ttl must be positive")
	}
	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*subject, []string{domain.RoleStaff}, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
