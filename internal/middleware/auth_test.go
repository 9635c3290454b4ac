package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
)

func basic(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

type fakeVerifier struct {
	users map[string]string
	err   error
	calls int
}

func (f *fakeVerifier) VerifyCredentials(_ context.Context, username, password string) (models.Principal, bool, error) {
	f.calls++
	if f.err != nil {
		return models.Principal{}, false, f.err
	}
	if pw, ok := f.users[username]; ok && pw == password {
		return models.Principal{ID: 1, Username: username}, true, nil
	}
	return models.Principal{}, false, nil
}

func TestStaticBasicAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/page", StaticBasicAuth("username", "password"), func(c *fiber.Ctx) error {
		return c.SendString("<h1> You are on the page </h1>")
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no credentials", "", http.StatusUnauthorized},
		{"wrong password", basic("username", "nope"), http.StatusUnauthorized},
		{"wrong username", basic("someone", "password"), http.StatusUnauthorized},
		{"correct credentials", basic("username", "password"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/page", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Login Required"`, resp.Header.Get("WWW-Authenticate"))
				assert.Equal(t, "Could not verify the login", string(body))
			} else {
				assert.Equal(t, "<h1> You are on the page </h1>", string(body))
			}
		})
	}
}

func TestBasicAuthAttachesPrincipal(t *testing.T) {
	verifier := &fakeVerifier{users: map[string]string{"u1": "p1"}}
	handlerCalls := 0

	app := fiber.New()
	app.Get("/me", BasicAuth(verifier), func(c *fiber.Ctx) error {
		handlerCalls++
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		return c.SendString(p.Username)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", basic("u1", "p1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "u1", string(body))
	assert.Equal(t, 1, handlerCalls)
}

func TestBasicAuthRejectsBeforeHandler(t *testing.T) {
	verifier := &fakeVerifier{users: map[string]string{"u1": "p1"}}
	handlerCalls := 0

	app := fiber.New()
	app.Get("/me", BasicAuth(verifier), func(c *fiber.Ctx) error {
		handlerCalls++
		return c.SendStatus(http.StatusOK)
	})

	for _, header := range []string{"", "Bearer abc", "Basic !!!notbase64", basic("u1", "wrong"), basic("u2", "p1")} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
		assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"), header)
	}
	assert.Equal(t, 0, handlerCalls)
}

func TestBasicAuthStoreFailure(t *testing.T) {
	app := fiber.New()
	app.Get("/me", BasicAuth(&fakeVerifier{err: errors.New("db down")}), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", basic("u1", "p1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestParseBasicAuth(t *testing.T) {
	u, p, ok := parseBasicAuth(basic("user", "pa:ss"))
	assert.True(t, ok)
	assert.Equal(t, "user", u)
	assert.Equal(t, "pa:ss", p)

	u, _, ok = parseBasicAuth("basic " + base64.StdEncoding.EncodeToString([]byte("lower:case")))
	assert.True(t, ok)
	assert.Equal(t, "lower", u)

	_, _, ok = parseBasicAuth("Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon")))
	assert.False(t, ok)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandler())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
