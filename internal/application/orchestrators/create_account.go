package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hackathon/internal/adapters/storage"
	"hackathon/internal/domain/account"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	Clock        func() time.Time
	NewID        func() string
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount creates an admin or judge login.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Email must be unique (case-insensitive)
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	acct := account.Account{
		ID:          newID(deps.NewID),
		Email:       strings.TrimSpace(input.Email),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        input.Role,
		CreatedAt:   nowOr(deps.Clock),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, &ValidationError{Field: accountField(err), Err: err}
	}

	_, err := deps.AccountStore.GetByEmail(ctx, acct.Email)
	switch {
	case err == nil:
		return account.Account{}, &ValidationError{Field: "email", Err: ErrEmailAlreadyExists}
	case !errors.Is(err, storage.ErrNotFound):
		return account.Account{}, fmt.Errorf("look up account: %w", err)
	}

	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, &ValidationError{Field: "password", Err: err}
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, &WriteError{Entity: "account", Err: err}
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return acct, nil
}

// ExecuteSeedAdmin creates an admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0; returns whether one was created
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) (bool, error) {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:       email,
		DisplayName: "Organiser",
		Password:    password,
		Role:        account.RoleAdmin,
	}, deps); err != nil {
		return false, err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return true, nil
}

func accountField(err error) string {
	switch {
	case errors.Is(err, account.ErrNameTooLong):
		return "display_name"
	case errors.Is(err, account.ErrInvalidRole):
		return "role"
	default:
		return "email"
	}
}
