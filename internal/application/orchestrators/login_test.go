package orchestrators

import (
	"context"
	"errors"
	"testing"

	"hackathon/internal/adapters/storage"
	"hackathon/internal/domain/account"
)

func TestCreateAccountAndLogin(t *testing.T) {
	accounts := newMemAccounts()
	ctx := context.Background()
	deps := CreateAccountDeps{AccountStore: accounts, Clock: testClock, NewID: seqIDs("acct")}

	acct, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email: " judge@uni.example ", DisplayName: "Dr. Park", Password: "correct horse battery", Role: account.RoleJudge,
	}, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if acct.ID != "acct-1" || acct.Email != "judge@uni.example" || acct.PasswordHash == "" {
		t.Errorf("unexpected account %+v", acct)
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{Email: "JUDGE@uni.example", Password: "another long password", Role: account.RoleJudge}, deps)
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}

	res, err := ExecuteLogin(ctx, LoginInput{Email: "judge@uni.example", Password: "correct horse battery"}, LoginDeps{AccountStore: accounts})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != account.RoleJudge || res.DisplayName != "Dr. Park" {
		t.Errorf("unexpected login result %+v", res)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	deps := CreateAccountDeps{AccountStore: newMemAccounts()}
	tests := []struct {
		name      string
		input     CreateAccountInput
		wantField string
	}{
		{"no email", CreateAccountInput{Password: "long enough password", Role: account.RoleAdmin}, "email"},
		{"bad role", CreateAccountInput{Email: "a@b.c", Password: "long enough password", Role: "coach"}, "role"},
		{"short password", CreateAccountInput{Email: "a@b.c", Password: "short", Role: account.RoleAdmin}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteCreateAccount(context.Background(), tt.input, deps)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.wantField {
				t.Errorf("expected ValidationError on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	accounts := newMemAccounts()
	ctx := context.Background()
	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: "admin@uni.example", Password: "correct horse battery", Role: account.RoleAdmin},
		CreateAccountDeps{AccountStore: accounts}); err != nil {
		t.Fatal(err)
	}
	deps := LoginDeps{AccountStore: accounts}

	for i := 0; i < account.MaxFailedLogins; i++ {
		if _, err := ExecuteLogin(ctx, LoginInput{Email: "admin@uni.example", Password: "wrong password!!"}, deps); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	_, err := ExecuteLogin(ctx, LoginInput{Email: "admin@uni.example", Password: "correct horse battery"}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "ghost@uni.example", Password: "whatever"}, LoginDeps{AccountStore: newMemAccounts()})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestExecuteSeedAdmin(t *testing.T) {
	accounts := newMemAccounts()
	deps := CreateAccountDeps{AccountStore: accounts}
	ctx := context.Background()

	created, err := ExecuteSeedAdmin(ctx, deps, "admin@uni.example", "correct horse battery")
	if err != nil || !created {
		t.Fatalf("first seed = %v, %v", created, err)
	}
	created, err = ExecuteSeedAdmin(ctx, deps, "other@uni.example", "correct horse battery")
	if err != nil || created {
		t.Errorf("second seed should be a no-op, got %v, %v", created, err)
	}
	if len(accounts.byEmail) != 1 {
		t.Errorf("accounts = %d, want 1", len(accounts.byEmail))
	}
}

func TestChangePassword(t *testing.T) {
	accounts := newMemAccounts()
	ctx := context.Background()
	acct, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email: "admin@uni.example", Password: "correct horse battery", Role: account.RoleAdmin,
	}, CreateAccountDeps{AccountStore: accounts, NewID: seqIDs("acct")})
	if err != nil {
		t.Fatal(err)
	}
	deps := ChangePasswordDeps{AccountStore: accounts}

	tests := []struct {
		name      string
		current   string
		next      string
		wantField string
	}{
		{"wrong current", "not my password", "a brand new passphrase", "current_password"},
		{"same password", "correct horse battery", "correct horse battery", "new_password"},
		{"too short", "correct horse battery", "short", "new_password"},
		{"empty current", "", "a brand new passphrase", "current_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: acct.ID, CurrentPassword: tt.current, NewPassword: tt.next}, deps)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.wantField {
				t.Errorf("expected ValidationError on %q, got %v", tt.wantField, err)
			}
		})
	}

	if err := ExecuteChangePassword(ctx, ChangePasswordInput{
		AccountID: acct.ID, CurrentPassword: "correct horse battery", NewPassword: "a brand new passphrase",
	}, deps); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "admin@uni.example", Password: "correct horse battery"}, LoginDeps{AccountStore: accounts}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still works: %v", err)
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "admin@uni.example", Password: "a brand new passphrase"}, LoginDeps{AccountStore: accounts}); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	err = ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: "nobody", CurrentPassword: "x", NewPassword: "a brand new passphrase"}, deps)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing account: got %v", err)
	}
}
