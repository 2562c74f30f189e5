package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(_ context.Context, token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newApp(logger logrus.FieldLogger) *fiber.App {
	app := fiber.New()
	app.Use(RequestLogger(logger))
	app.Use(Authenticate(staticVerifier{"good": "user-1"}, logger))
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendString("viewer=" + UserID(c))
	})
	app.Get("/closed", RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthenticate_OptionalRoutes(t *testing.T) {
	app := newApp(quietLogger())

	status, body := get(t, app, "/open", "Bearer good")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "viewer=user-1", body)

	status, body = get(t, app, "/open", "Bearer forged")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "viewer=", body)

	status, body = get(t, app, "/open", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "viewer=", body)
}

func TestRequireAuth(t *testing.T) {
	app := newApp(quietLogger())

	status, body := get(t, app, "/closed", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.JSONEq(t, `{"status":"error","message":"Unauthorized"}`, body)

	status, _ = get(t, app, "/closed", "Bearer forged")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get(t, app, "/closed", "Basic good")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = get(t, app, "/closed", "bearer good")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-1", body)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc "))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("Token abc"))
	assert.Equal(t, "", bearerToken(""))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	app := newApp(logger)

	req := httptest.NewRequest("GET", "/closed", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()

	requestID := resp.Header.Get(fiber.HeaderXRequestID)
	assert.NotEmpty(t, requestID)
	assert.Contains(t, buf.String(), requestID)
	assert.Contains(t, buf.String(), `"user_id":"user-1"`)
	assert.Contains(t, buf.String(), `"status_code":200`)

	buf.Reset()
	status, _ := get(t, app, "/closed", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, buf.String(), `"level":"warning"`)
}

type echoVerifier struct{}

func (echoVerifier) Verify(_ context.Context, token string) (string, error) {
	return token, nil
}

func TestAuthenticate_UserIDOutlivesRequest(t *testing.T) {
	app := fiber.New()
	app.Use(Authenticate(echoVerifier{}, quietLogger()))
	var seen []string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = append(seen, UserID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, token := range []string{"user-aaaa", "user-bbbb", "user-cccc"} {
		status, _ := get(t, app, "/", "Bearer "+token)
		require.Equal(t, fiber.StatusNoContent, status)
	}
	assert.Equal(t, []string{"user-aaaa", "user-bbbb", "user-cccc"}, seen)
}
