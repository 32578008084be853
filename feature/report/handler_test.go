package report_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"modaudit/feature/report"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	service, _ := seededService(t)
	app := fiber.New()
	report.NewHandler(service, zap.NewNop()).RegisterRoutes(app)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func TestQueryRoutes(t *testing.T) {
	app := newTestApp(t)

	t.Run("Entities", func(t *testing.T) {
		var entities []report.EntitySummary
		status := getJSON(t, app, "/query/entities", &entities)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, entities, 4)
	})

	t.Run("References", func(t *testing.T) {
		var refs []map[string]any
		status := getJSON(t, app, "/query/references", &refs)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, refs, 2)
	})

	t.Run("Closure", func(t *testing.T) {
		var rows []map[string]any
		status := getJSON(t, app, "/query/closure", &rows)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, rows, 3)
	})

	t.Run("Dependents", func(t *testing.T) {
		var rows []map[string]any
		status := getJSON(t, app, "/query/dependents/item/ammo9mmBullet", &rows)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, rows, 2)
	})

	t.Run("Operations", func(t *testing.T) {
		var ops []map[string]any
		status := getJSON(t, app, "/query/operations", &ops)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, ops, 3)
	})

	t.Run("OperationsByMod", func(t *testing.T) {
		var ops []map[string]any
		status := getJSON(t, app, "/query/operations/ModB", &ops)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, ops, 2)
	})

	t.Run("Conflicts", func(t *testing.T) {
		var verdicts []map[string]any
		status := getJSON(t, app, "/query/conflicts", &verdicts)
		assert.Equal(t, fiber.StatusOK, status)
		require.Len(t, verdicts, 1)
		assert.Equal(t, "medium", verdicts[0]["severity"])
	})

	t.Run("Fragile", func(t *testing.T) {
		var ops []map[string]any
		status := getJSON(t, app, "/query/fragile", &ops)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, ops, 1)
	})

	t.Run("Aggregate", func(t *testing.T) {
		var agg report.Aggregates
		status := getJSON(t, app, "/query/aggregate", &agg)
		assert.Equal(t, fiber.StatusOK, status)
		assert.EqualValues(t, 1, agg.FragileOperations)
		require.Len(t, agg.DefinitionsByType, 2)
	})

	t.Run("Meta", func(t *testing.T) {
		var meta map[string]any
		status := getJSON(t, app, "/query/meta", &meta)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "run-1", meta["id"])
	})
}
