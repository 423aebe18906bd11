package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukex/formtrigger/pkg/auth"
	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/mocks"
	"github.com/dukex/formtrigger/pkg/persistence/file"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/dukex/formtrigger/pkg/triggers/happyforms"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.MockDispatcher) {
	t.Helper()

	promRegistry := prometheus.NewRegistry()

	m, err := metrics.New(promRegistry)
	require.NoError(t, err)

	dispatcher := &mocks.MockDispatcher{}
	hookRegistry := hooks.NewRegistry()

	reg := registry.NewRegistry(slog.Default(), hookRegistry)
	reg.RegisterTrigger(happyforms.NewSubmitForm(slog.Default(), dispatcher, nil, m))

	sessions := auth.NewMemoryStore()
	require.NoError(t, sessions.Save(context.Background(), "token", 3, 0))

	api := NewAPI(slog.Default(), file.NewPersistence(t.TempDir()), reg, hookRegistry, sessions, m, promRegistry)

	return api.App(), dispatcher
}

func get(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := get(t, app, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Form Trigger API", body)
}

func TestAPI_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := get(t, app, "/livez")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, body = get(t, app, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status":"healthy"`)
}

func TestAPI_Routes(t *testing.T) {
	app, _ := setupTestApp(t)

	status, _ := get(t, app, "/triggers")
	assert.Equal(t, http.StatusOK, status)

	status, _ = get(t, app, "/automations")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, app, "/logs")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_SubmissionIsCounted(t *testing.T) {
	app, dispatcher := setupTestApp(t)

	dispatcher.On("TriggerEvent", mock.Anything, mock.Anything).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/forms/submissions",
		strings.NewReader(`{"form":{"ID":5},"submission":{"email":"ada@example.com"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	dispatcher.AssertExpectations(t)

	status, body := get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "formtrigger_form_submissions_received_total 1")
	assert.Contains(t, body, `http_requests_total{method="POST",path="/forms/submissions",status="202"} 1`)
}
