package workflow

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/store"
)

type loginState int

const (
	loginAddress loginState = iota
	loginUsername
	loginPassword
)

// Login configures the server address and authenticates
type Login struct {
	deps     Deps
	state    loginState
	address  string
	username string
}

// NewLogin creates the configure-server workflow
func NewLogin(deps Deps) *Login {
	return &Login{deps: deps}
}

func (l *Login) Name() string { return "login" }

func (l *Login) Start(ctx context.Context) (*Step, error) {
	initial := l.deps.Store.String(store.KeyServerAddress)
	if initial == "" {
		initial = "http://"
	}
	l.state = loginAddress
	return prompt("Modx Server Address", initial), nil
}

func (l *Login) Resume(ctx context.Context, answer Answer) (*Step, error) {
	switch l.state {
	case loginAddress:
		if answer.Text == "" {
			return nil, nil
		}
		l.address = answer.Text
		l.state = loginUsername
		return prompt("Modx Server Username", ""), nil

	case loginUsername:
		if answer.Text == "" {
			return nil, nil
		}
		l.username = answer.Text
		l.state = loginPassword
		return secret("Modx Server Password"), nil

	case loginPassword:
		return nil, l.authenticate(ctx, answer.Text)
	}
	return nil, fmt.Errorf("login: invalid state %d", l.state)
}

func (l *Login) authenticate(ctx context.Context, password string) error {
	env, err := l.deps.API.Login(ctx, l.address, url.Values{
		"address":    {l.address},
		"username":   {l.username},
		"password":   {password},
		"rememberme": {"1"},
	})
	if err != nil {
		return err
	}

	l.deps.Store.Set(store.KeyServerAddress, l.address)
	l.deps.Store.Set(store.KeyServerToken, env.Token())
	if err := l.deps.Store.Persist(); err != nil {
		return fmt.Errorf("failed to save server settings: %w", err)
	}

	l.deps.logger().Info("server saved",
		zap.String("address", l.address),
		zap.String("username", l.username))
	l.deps.Editor.StatusMessage("Modx server saved")
	return nil
}
