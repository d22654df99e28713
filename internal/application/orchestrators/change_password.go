package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hackathon/internal/domain/account"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword lets an organiser replace their own password.
// PRE: AccountID names the signed-in account
// POST: the new hash is stored and failed-login state is cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.CurrentPassword == "" {
		return &ValidationError{Field: "current_password", Err: account.ErrEmptyPassword}
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		slog.Warn("auth_event", "event", "password_change_rejected", "account_id", acct.ID)
		return &ValidationError{Field: "current_password", Err: ErrCurrentPasswordWrong}
	}
	if input.CurrentPassword == input.NewPassword {
		return &ValidationError{Field: "new_password", Err: ErrNewPasswordSame}
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return &ValidationError{Field: "new_password", Err: err}
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return &WriteError{Entity: "account", Err: err}
	}
	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID)
	return nil
}
