package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gradefetcher-api/internal/config"
	"github.com/noah-isme/gradefetcher-api/internal/dto"
	"github.com/noah-isme/gradefetcher-api/internal/handler"
	"github.com/noah-isme/gradefetcher-api/internal/models"
	"github.com/noah-isme/gradefetcher-api/internal/repository"
	"github.com/noah-isme/gradefetcher-api/internal/router"
	"github.com/noah-isme/gradefetcher-api/internal/service"
)

func setupBlockApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:blockhandler?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GraderBlock{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	blockRepo := repository.NewBlockRepository(db)
	blockService := service.NewBlockService(blockRepo, validate, logger)

	app := fiber.New()
	blockHandler := handler.NewBlockHandler(blockService, logger)

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		BlockHandler: blockHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return app
}

func createBlock(t *testing.T, app *fiber.App, payload map[string]interface{}) dto.BlockResponse {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/blocks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Status string            `json:"status"`
		Data   dto.BlockResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.Equal(t, "success", created.Status)
	require.NotZero(t, created.Data.ID)

	return created.Data
}

func TestBlockHandlerCreateAppliesDefaults(t *testing.T) {
	app := setupBlockApp(t)

	block := createBlock(t, app, map[string]interface{}{
		"course_id":       "course-v1:Test+101+2026",
		"grader_endpoint": "https://grader.example.com/grade",
	})

	require.Equal(t, "Grade Fetcher", block.DisplayName)
	require.Equal(t, "Grade Me", block.ButtonText)
	require.Equal(t, models.IdentifierEmail, block.UserIdentifier)
	require.Equal(t, "email", block.UserIdentifierParameter)
	require.Equal(t, models.MethodGet, block.HTTPMethod)
	require.Equal(t, "unit_id", block.ActivityIdentifierParameter)
}

func TestBlockHandlerCreateRejectsInvalidMethod(t *testing.T) {
	app := setupBlockApp(t)

	body, err := json.Marshal(map[string]interface{}{
		"course_id":       "course-v1:Test+101+2026",
		"grader_endpoint": "https://grader.example.com/grade",
		"http_method":     "put",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/blocks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestBlockHandlerGetAndUpdate(t *testing.T) {
	app := setupBlockApp(t)

	block := createBlock(t, app, map[string]interface{}{
		"course_id":       "course-v1:Test+101+2026",
		"grader_endpoint": "https://grader.example.com/grade",
		"client_secret":   "shh",
	})
	require.True(t, block.HasClientSecret)

	path := "/api/v1/blocks/" + strconv.FormatUint(uint64(block.ID), 10)

	body, err := json.Marshal(map[string]interface{}{
		"display_name": "Final Project Grade",
		"http_method":  "post",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	getResp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)

	var fetched struct {
		Data dto.BlockResponse `json:"data"`
	}
	decodeResponse(t, getResp, &fetched)
	require.Equal(t, "Final Project Grade", fetched.Data.DisplayName)
	require.Equal(t, models.MethodPost, fetched.Data.HTTPMethod)
	require.Equal(t, "https://grader.example.com/grade", fetched.Data.GraderEndpoint)
	require.True(t, fetched.Data.HasClientSecret)
}

func TestBlockHandlerDelete(t *testing.T) {
	app := setupBlockApp(t)

	block := createBlock(t, app, map[string]interface{}{
		"course_id":       "course-v1:Test+101+2026",
		"grader_endpoint": "https://grader.example.com/grade",
	})

	path := "/api/v1/blocks/" + strconv.FormatUint(uint64(block.ID), 10)

	resp, err := app.Test(httptest.NewRequest("DELETE", path, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	getResp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, getResp.StatusCode)
}

func TestBlockHandlerSchema(t *testing.T) {
	app := setupBlockApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/blocks/schema", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []dto.FieldSchema `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.NotEmpty(t, body.Data)

	names := make(map[string]dto.FieldSchema, len(body.Data))
	for _, field := range body.Data {
		names[field.Name] = field
	}
	require.Contains(t, names, "grader_endpoint")
	require.Contains(t, names, "user_identifier")
	require.True(t, names["client_secret"].Secret)
	require.Equal(t, "Grade Fetcher", names["display_name"].Default)
}
