package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/aidocpro/internal/client/identity"
	"github.com/dmitrijs2005/aidocpro/internal/client/services"
	"github.com/dmitrijs2005/aidocpro/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// authenticate runs one submission of the auth form in the given mode.
func (a *App) authenticate(ctx context.Context, mode services.AuthMode) error {
	a.auth.SwitchTo(mode)

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	var password []byte
	if mode != services.AuthForgotPassword {
		password, err = getPassword(a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)
	}

	out, err := a.auth.Submit(ctx, email, password)
	if err != nil {
		return err
	}

	if out.Message != "" {
		a.println(out.Message)
	}
	if out.Close && out.Session != nil {
		a.printf("Xush kelibsiz, %s!\n", out.Session.Email)
	}
	return nil
}

// Login signs in with email and password.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, services.AuthLogin)
}

// Register creates an account. Depending on the provider and on
// registration_mode the user is signed in or asked to confirm the email.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, services.AuthRegister)
}

// Forgot sends a password reset link.
func (a *App) Forgot(ctx context.Context) error {
	return a.authenticate(ctx, services.AuthForgotPassword)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.identity.SignOut(ctx); err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			a.println("Siz tizimga kirmagansiz")
			return nil
		}
		return err
	}
	a.println("Tizimdan chiqdingiz")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.identity.Current()
	if s == nil {
		a.println("Mehmon (tizimga kirilmagan)")
		return nil
	}
	plan := "bepul"
	if s.IsPremium {
		plan = "premium"
	}
	a.printf("%s (%s), id: %s\n", s.Email, plan, s.UserID)
	return nil
}
