package workflow

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/modxel/internal/connector"
	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/store"
	"github.com/GriffinCanCode/modxel/tests/helpers/testutil"
)

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.server.HandleFunc("security/login", func(url.Values) testutil.Response {
		return testutil.Response{
			Body:      `{"success":true,"object":{"token":"T1"}}`,
			SetCookie: "PHPSESSID=s1; Path=/",
		}
	})

	e.interactor.On("Prompt", mock.Anything, mock.MatchedBy(func(p editor.Prompt) bool {
		return p.Caption == "Modx Server Address" && p.Initial == "http://"
	})).Return(e.server.URL, nil).Once()
	e.interactor.OnPrompt("Modx Server Username", "u")
	e.interactor.On("Prompt", mock.Anything, mock.MatchedBy(func(p editor.Prompt) bool {
		return p.Caption == "Modx Server Password" && p.Secret
	})).Return("p", nil).Once()

	require.NoError(t, e.runner.Execute(context.Background(), NewLogin(e.deps)))
	e.interactor.AssertExpectations(t)

	session := e.store.Session()
	assert.Equal(t, e.server.URL, session.BaseURL)
	assert.Equal(t, "T1", session.AuthToken)
	assert.Equal(t, "PHPSESSID=s1", session.SessionCookie)

	req, ok := e.server.Last("security/login")
	require.True(t, ok)
	assert.Equal(t, "/connectors/", req.Path)
	assert.Equal(t, "u", req.Form.Get("username"))
	assert.Equal(t, "p", req.Form.Get("password"))
	assert.Equal(t, "1", req.Form.Get("rememberme"))
	assert.Equal(t, e.server.URL, req.Form.Get("address"))

	assert.Equal(t, []string{"Modx server saved"}, e.editor.Statuses())
}

func TestLoginPrefillsStoredAddress(t *testing.T) {
	e := newTestEnv(t)
	e.store.Set(store.KeyServerAddress, "http://cms.test")

	e.interactor.On("Prompt", mock.Anything, mock.MatchedBy(func(p editor.Prompt) bool {
		return p.Initial == "http://cms.test"
	})).Return("", nil).Once()

	require.NoError(t, e.runner.Execute(context.Background(), NewLogin(e.deps)))
	e.interactor.AssertExpectations(t)
}

func TestLoginEmptyAnswersStop(t *testing.T) {
	t.Run("address", func(t *testing.T) {
		e := newTestEnv(t)
		e.interactor.OnPrompt("Modx Server Address", "")

		require.NoError(t, e.runner.Execute(context.Background(), NewLogin(e.deps)))
		assert.Empty(t, e.server.Requests())
		assert.Empty(t, e.store.String(store.KeyServerAddress))
	})

	t.Run("username", func(t *testing.T) {
		e := newTestEnv(t)
		e.interactor.OnPrompt("Modx Server Address", e.server.URL)
		e.interactor.OnPrompt("Modx Server Username", "")

		require.NoError(t, e.runner.Execute(context.Background(), NewLogin(e.deps)))
		assert.Empty(t, e.server.Requests())
	})
}

func TestLoginRejected(t *testing.T) {
	e := newTestEnv(t)
	e.server.HandleFunc("security/login", func(url.Values) testutil.Response {
		return testutil.Response{Status: http.StatusUnauthorized}
	})
	e.interactor.OnPrompt("Modx Server Address", e.server.URL)
	e.interactor.OnPrompt("Modx Server Username", "u")
	e.interactor.OnPrompt("Modx Server Password", "wrong")

	err := e.runner.Execute(context.Background(), NewLogin(e.deps))
	assert.ErrorIs(t, err, connector.ErrUnauthorized)
	assert.Equal(t, []string{"Modx: server is not authorized."}, e.editor.Errors())
	assert.Empty(t, e.store.String(store.KeyServerToken))
}

func TestLoginRejectedKeepsPreviousAddress(t *testing.T) {
	e := newTestEnv(t)
	e.store.Set(store.KeyServerAddress, "http://old.test")
	e.server.HandleFunc("security/login", func(url.Values) testutil.Response {
		return testutil.Response{
			Body:      `{"success":false,"message":"Wrong password"}`,
			SetCookie: "PHPSESSID=s9; Path=/",
		}
	})
	e.interactor.OnPrompt("Modx Server Address", e.server.URL)
	e.interactor.OnPrompt("Modx Server Username", "u")
	e.interactor.OnPrompt("Modx Server Password", "wrong")

	err := e.runner.Execute(context.Background(), NewLogin(e.deps))
	_, ok := connector.IsAPIError(err)
	require.True(t, ok)

	session := e.store.Session()
	assert.Equal(t, "http://old.test", session.BaseURL)
	assert.Equal(t, "PHPSESSID=s9", session.SessionCookie)
	assert.Empty(t, session.AuthToken)
	assert.Equal(t, 1, e.server.Count("security/login"))
}
