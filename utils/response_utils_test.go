package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairconnect/api/internal/apperr"
)

func TestRespondWithAppError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthorized", apperr.Unauthorized("login required"), 401, "login required"},
		{"forbidden", apperr.Forbidden("not the owner"), 403, "not the owner"},
		{"not found", apperr.NotFound("Project not found"), 404, "Project not found"},
		{"invalid", apperr.InvalidInput("bad action"), 400, "bad action"},
		{"wrapped", fmt.Errorf("handler: %w", apperr.NotFound("Session not found")), 404, "Session not found"},
		{"internal", apperr.Internal("failed to load project", errors.New("connection reset")), 500, "failed to load project"},
		{"plain", errors.New("boom"), 500, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return RespondWithAppError(c, logger, tc.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.JSONEq(t, fmt.Sprintf(`{"status":"error","message":%q}`, tc.message), string(body))
			assert.NotContains(t, string(body), "connection reset")
		})
	}
}

func TestRespondWithJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithJSON(c, fiber.StatusCreated, fiber.Map{"id": "p1"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"status":"success","data":{"id":"p1"}}`, string(body))
}

func TestFormatValidationErrors(t *testing.T) {
	type input struct {
		Email string `validate:"required,email"`
		Name  string `validate:"max=3"`
	}
	err := validator.New().Struct(input{Name: "toolong"})
	msgs := FormatValidationErrors(err)
	assert.Equal(t, []string{
		"Field 'Email' failed on the 'required' tag",
		"Field 'Name' failed on the 'max' tag (value: 3)",
	}, msgs)

	assert.Equal(t, []string{"plain"}, FormatValidationErrors(errors.New("plain")))
	assert.Empty(t, FormatValidationErrors(nil))
}
