package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
	"github.com/bit2424/LunchLog/services"
)

// emptyGateway answers every call with no results.
type emptyGateway struct{}

func (emptyGateway) FindByText(ctx context.Context, name, address string) ([]services.PlaceCandidate, error) {
	return nil, nil
}
func (emptyGateway) FetchDetails(ctx context.Context, placeID string) (*services.PlaceDetails, error) {
	return nil, services.ErrPlaceNotFound
}
func (emptyGateway) NearbySearch(ctx context.Context, lat, lng float64, radius, limit int) ([]services.PlaceDetails, error) {
	return nil, nil
}

func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Cuisine{},
		&entity.Restaurant{},
		&entity.Receipt{},
		&entity.UserRestaurantVisit{},
		&entity.UserCuisineStat{},
		&entity.EnrichmentTask{},
	))

	log := logger.Nop()
	restaurantRepo := repository.NewRestaurantRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	statsSvc := services.NewStatsService(statsRepo, log)
	receiptSvc := services.NewReceiptService(db, repository.NewReceiptRepository(db), restaurantRepo, statsSvc, taskRepo, log)
	recSvc := services.NewRecommendationService(statsRepo, emptyGateway{}, services.DefaultRecommendationPolicy(), nil, log)

	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:              db,
		Receipts:        receiptSvc,
		Recommendations: recSvc,
		Restaurants:     restaurantRepo,
		Stats:           statsRepo,
		Tasks:           taskRepo,
	})
	return r, db
}

func request(r *gin.Engine, method, path string, userID uint, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", fmt.Sprint(userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	r, _ := setupServer(t)
	w := request(r, http.MethodGet, "/health", 0, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReceiptEndpointsRequireIdentity(t *testing.T) {
	r, _ := setupServer(t)
	w := request(r, http.MethodGet, "/receipts", 0, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndFetchReceipt(t *testing.T) {
	r, db := setupServer(t)
	user := entity.User{Email: "a@example.com"}
	require.NoError(t, db.Create(&user).Error)

	w := request(r, http.MethodPost, "/receipts", user.ID,
		`{"date":"2025-01-10","price":1250,"restaurantName":"Mario's","address":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"stub":true`)

	// The write queued enrichment for the new stub.
	var tasks int64
	require.NoError(t, db.Model(&entity.EnrichmentTask{}).
		Where("status = ?", entity.TaskStatusQueued).Count(&tasks).Error)
	assert.EqualValues(t, 1, tasks)

	w = request(r, http.MethodGet, "/receipts", user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"date":"2025-01-10"`)

	w = request(r, http.MethodGet, "/receipts/999", user.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReceiptRejectsBadPayload(t *testing.T) {
	r, db := setupServer(t)
	user := entity.User{Email: "a@example.com"}
	require.NoError(t, db.Create(&user).Error)

	w := request(r, http.MethodPost, "/receipts", user.ID, `{"price":1250,"restaurantName":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing date")

	w = request(r, http.MethodPost, "/receipts", user.ID,
		`{"date":"10.01.2025","price":1250,"restaurantName":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "bad date format")
}

func TestRecommendationsWithoutHistoryAreEmpty(t *testing.T) {
	r, db := setupServer(t)
	user := entity.User{Email: "a@example.com"}
	require.NoError(t, db.Create(&user).Error)

	for _, path := range []string{
		"/recommendations/good",
		"/recommendations/cheap",
		"/recommendations/cuisine-match",
	} {
		w := request(r, http.MethodGet, path, user.ID, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"items":[]`, path)
	}
}

func TestRecommendationsRejectNegativeLimit(t *testing.T) {
	r, db := setupServer(t)
	user := entity.User{Email: "a@example.com"}
	require.NoError(t, db.Create(&user).Error)

	w := request(r, http.MethodGet, "/recommendations/good?limit=-1", user.ID, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileStatsReflectReceipts(t *testing.T) {
	r, db := setupServer(t)
	user := entity.User{Email: "a@example.com"}
	require.NoError(t, db.Create(&user).Error)

	w := request(r, http.MethodPost, "/receipts", user.ID,
		`{"date":"2025-01-10","price":1250,"restaurantName":"Mario's","address":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(r, http.MethodGet, "/profile/stats", user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"restaurant":"Mario's"`)
	assert.Contains(t, w.Body.String(), `"visitCount":1`)
}

func TestRestaurantRefreshEnqueuesTask(t *testing.T) {
	r, db := setupServer(t)
	user := entity.User{Email: "a@example.com"}
	require.NoError(t, db.Create(&user).Error)
	rest := entity.Restaurant{PlaceID: entity.StubPlaceIDPrefix + "x", Name: "Mario's"}
	require.NoError(t, db.Create(&rest).Error)

	w := request(r, http.MethodPost, fmt.Sprintf("/restaurants/%d/refresh", rest.ID), user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"queued"`)

	w = request(r, http.MethodPost, "/restaurants/999/refresh", user.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
