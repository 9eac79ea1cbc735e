package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/common"
)

// Identity is the part of the identity service the auth flow drives.
type Identity interface {
	SignIn(ctx context.Context, email string, password []byte) (*models.Session, error)
	SignUp(ctx context.Context, email string, password []byte) (*models.Session, error)
	ResetPassword(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
}

type AuthMode int

const (
	AuthLogin AuthMode = iota
	AuthRegister
	AuthForgotPassword
)

func (m AuthMode) String() string {
	switch m {
	case AuthLogin:
		return "login"
	case AuthRegister:
		return "register"
	case AuthForgotPassword:
		return "forgot"
	}
	return "unknown"
}

// Outcome tells the caller whether to close the auth prompt and what to
// show.
type Outcome struct {
	Close   bool
	Message string
	Session *models.Session
}

// AuthFlow is the Login | Register | ForgotPassword form. Provider errors
// are returned untouched so their text reaches the user verbatim.
type AuthFlow struct {
	ident Identity
	// confirmSignUp never adopts a sign-up session and always asks the user
	// to confirm the email first.
	confirmSignUp bool

	mu   sync.Mutex
	mode AuthMode
	busy bool
}

func NewAuthFlow(ident Identity, confirmSignUp bool) *AuthFlow {
	return &AuthFlow{ident: ident, confirmSignUp: confirmSignUp}
}

func (f *AuthFlow) Mode() AuthMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *AuthFlow) SwitchTo(m AuthMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = m
}

// Submit runs the current mode's identity call.
func (f *AuthFlow) Submit(ctx context.Context, email string, password []byte) (Outcome, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Outcome{}, ErrEmptyEmail
	}

	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	mode := f.mode
	if mode != AuthForgotPassword && len(password) == 0 {
		f.mu.Unlock()
		return Outcome{}, ErrEmptyPassword
	}
	f.busy = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	switch mode {
	case AuthRegister:
		return f.register(ctx, email, password)
	case AuthForgotPassword:
		if err := f.ident.ResetPassword(ctx, email); err != nil {
			return Outcome{}, err
		}
		return Outcome{Message: common.MsgPasswordReset}, nil
	default:
		s, err := f.ident.SignIn(ctx, email, password)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Close: true, Session: s}, nil
	}
}

func (f *AuthFlow) register(ctx context.Context, email string, password []byte) (Outcome, error) {
	s, err := f.ident.SignUp(ctx, email, password)
	if err != nil {
		return Outcome{}, err
	}

	if s != nil && !f.confirmSignUp {
		return Outcome{Close: true, Session: s}, nil
	}
	if s != nil {
		_ = f.ident.SignOut(ctx)
	}

	f.mu.Lock()
	f.mode = AuthLogin
	f.mu.Unlock()
	return Outcome{Message: common.MsgSignUpConfirm}, nil
}
