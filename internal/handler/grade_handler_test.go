package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gradefetcher-api/internal/config"
	"github.com/noah-isme/gradefetcher-api/internal/dto"
	"github.com/noah-isme/gradefetcher-api/internal/grader"
	"github.com/noah-isme/gradefetcher-api/internal/handler"
	"github.com/noah-isme/gradefetcher-api/internal/models"
	"github.com/noah-isme/gradefetcher-api/internal/publisher"
	"github.com/noah-isme/gradefetcher-api/internal/repository"
	"github.com/noah-isme/gradefetcher-api/internal/router"
	"github.com/noah-isme/gradefetcher-api/internal/service"
)

func setupGradeApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:gradehandler?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GraderBlock{}, &models.GradeResult{}))

	mini := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	logger := zerolog.New(io.Discard)

	blockRepo := repository.NewBlockRepository(db)
	resultRepo := repository.NewGradeResultRepository(db)

	fetchClient := grader.NewClient(grader.Options{Logger: logger})
	gradeService := service.NewGradeService(blockRepo, resultRepo, fetchClient, cache, time.Minute, publisher.NewNoop(), logger)

	app := fiber.New()
	gradeHandler := handler.NewGradeHandler(gradeService, logger)

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		GradeHandler: gradeHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(7))
			c.Locals("user_email", "jane@example.com")
			c.Locals("username", "jane")
			return c.Next()
		},
	})

	return app, db
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func gradeURL(blockID uint) string {
	return "/api/v1/blocks/" + strconv.FormatUint(uint64(blockID), 10) + "/grade"
}

func TestGradeHandlerFetchSuccess(t *testing.T) {
	app, db := setupGradeApp(t)

	graderServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "jane@example.com", r.URL.Query().Get("email"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"assignment_id": "hw1", "grade": 1.0}, {"assignment_id": "hw2", "grade": 0, "reason": "Empty submission"}]}`))
	}))
	defer graderServer.Close()

	block := models.GraderBlock{
		CourseID:                "course-v1:Test+101+2026",
		UserIdentifier:          models.IdentifierEmail,
		UserIdentifierParameter: "email",
		GraderEndpoint:          graderServer.URL,
		HTTPMethod:              models.MethodGet,
	}
	require.NoError(t, db.Create(&block).Error)

	resp, err := app.Test(httptest.NewRequest("POST", gradeURL(block.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.GradeResponse
	decodeResponse(t, resp, &result)
	require.Equal(t, 50, result.Grade)
	require.Equal(t, []string{
		"Assignment hw1: Passed",
		"Assignment hw2: Failed - Empty submission",
	}, result.Reason)
	require.Contains(t, result.HTMLFormat, `<span class="grade">50</span>`)

	latest, err := app.Test(httptest.NewRequest("GET", gradeURL(block.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, latest.StatusCode)

	var latestBody struct {
		Status  string                  `json:"status"`
		Message string                  `json:"message"`
		Data    dto.LatestGradeResponse `json:"data"`
	}
	decodeResponse(t, latest, &latestBody)
	require.Equal(t, "success", latestBody.Status)
	require.Equal(t, 50, latestBody.Data.Grade)
	require.Equal(t, block.ID, latestBody.Data.BlockID)
}

func TestGradeHandlerInvalidGraderEndpoint(t *testing.T) {
	app, db := setupGradeApp(t)

	block := models.GraderBlock{
		CourseID:                "course-v1:Test+101+2026",
		UserIdentifier:          models.IdentifierEmail,
		UserIdentifierParameter: "email",
		GraderEndpoint:          "htt://example.com/grade",
		HTTPMethod:              models.MethodGet,
	}
	require.NoError(t, db.Create(&block).Error)

	resp, err := app.Test(httptest.NewRequest("POST", gradeURL(block.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result dto.GradeErrorResponse
	decodeResponse(t, resp, &result)
	require.Equal(t, "error", result.Status)
	require.Equal(t, "Grader endpoint is not a valid url", result.Message)
	require.Empty(t, result.HTMLFormat)
}

func TestGradeHandlerInvalidAuthEndpoint(t *testing.T) {
	app, db := setupGradeApp(t)

	block := models.GraderBlock{
		CourseID:                "course-v1:Test+101+2026",
		UserIdentifier:          models.IdentifierEmail,
		UserIdentifierParameter: "email",
		AuthenticationEndpoint:  "https://tokens-without-dot/oauth",
		GraderEndpoint:          "https://grader.example.com/grade",
		HTTPMethod:              models.MethodGet,
	}
	require.NoError(t, db.Create(&block).Error)

	resp, err := app.Test(httptest.NewRequest("POST", gradeURL(block.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result dto.GradeErrorResponse
	decodeResponse(t, resp, &result)
	require.Equal(t, "Authentication endpoint is not a valid url", result.Message)
}

func TestGradeHandlerUpstreamFailure(t *testing.T) {
	app, db := setupGradeApp(t)

	graderServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errorMessage": "Grader offline for maintenance"}`))
	}))
	defer graderServer.Close()

	block := models.GraderBlock{
		CourseID:                "course-v1:Test+101+2026",
		UserIdentifier:          models.IdentifierEmail,
		UserIdentifierParameter: "email",
		GraderEndpoint:          graderServer.URL,
		HTTPMethod:              models.MethodGet,
	}
	require.NoError(t, db.Create(&block).Error)

	resp, err := app.Test(httptest.NewRequest("POST", gradeURL(block.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var result dto.GradeErrorResponse
	decodeResponse(t, resp, &result)
	require.Equal(t, "Grader offline for maintenance", result.Message)
}

func TestGradeHandlerUnknownBlock(t *testing.T) {
	app, _ := setupGradeApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", gradeURL(999999), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGradeHandlerLatestBeforeFetch(t *testing.T) {
	app, db := setupGradeApp(t)

	block := models.GraderBlock{
		CourseID:                "course-v1:Test+101+2026",
		UserIdentifier:          models.IdentifierEmail,
		UserIdentifierParameter: "email",
		GraderEndpoint:          "https://grader.example.com/grade",
		HTTPMethod:              models.MethodGet,
	}
	require.NoError(t, db.Create(&block).Error)

	resp, err := app.Test(httptest.NewRequest("GET", gradeURL(block.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
