package categories

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"illusly-backend/models"
	"illusly-backend/testutils"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "character-design", Slugify("Character Design"))
	assert.Equal(t, "nature-paysages", Slugify("  Nature & Paysages  "))
	assert.Equal(t, "abstract", Slugify("Abstract"))
}

func TestGetAllCategories_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	rows := mock.NewRows([]string{"id", "name", "slug"}).
		AddRow("cat-uuid-1", "Abstract", "abstract").
		AddRow("cat-uuid-2", "Nature", "nature")
	mock.ExpectQuery(`SELECT \* FROM "categories" ORDER BY name ASC`).
		WillReturnRows(rows)

	r := testutils.SetupTestRouter()
	r.GET("/categories", GetAllCategories)

	req, _ := http.NewRequest(http.MethodGet, "/categories", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var categories []models.Category
	json.Unmarshal(resp.Body.Bytes(), &categories)
	assert.Len(t, categories, 2)
	assert.Equal(t, "Abstract", categories[0].Name)
}

func TestGetAllCategories_DatabaseError(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrInvalidDB)

	r := testutils.SetupTestRouter()
	r.GET("/categories", GetAllCategories)

	req, _ := http.NewRequest(http.MethodGet, "/categories", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestGetAllCategories_ServerlessFallback(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	os.Setenv("VERCEL", "1")
	defer os.Unsetenv("VERCEL")

	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrInvalidDB)

	r := testutils.SetupTestRouter()
	r.GET("/categories", GetAllCategories)

	req, _ := http.NewRequest(http.MethodGet, "/categories", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var categories []models.Category
	json.Unmarshal(resp.Body.Bytes(), &categories)
	assert.Empty(t, categories)
}

func TestCreateCategory_InvalidInput(t *testing.T) {
	r := testutils.SetupTestRouter()
	r.POST("/categories", CreateCategory)

	req, _ := http.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateCategory_AlreadyExists(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	rows := mock.NewRows([]string{"id", "name", "slug"}).
		AddRow("cat-uuid-1", "Abstract", "abstract")
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	r := testutils.SetupTestRouter()
	r.POST("/categories", CreateCategory)

	body, _ := json.Marshal(models.CategoryCreate{Name: "Abstract"})
	req, _ := http.NewRequest(http.MethodPost, "/categories", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Category already exists", respBody["error"])
}

func TestCreateCategory_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").WillReturnRows(mock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "categories"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("cat-uuid-1"))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/categories", CreateCategory)

	body, _ := json.Marshal(models.CategoryCreate{Name: "Character Design"})
	req, _ := http.NewRequest(http.MethodPost, "/categories", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var category models.Category
	json.Unmarshal(resp.Body.Bytes(), &category)
	assert.Equal(t, "Character Design", category.Name)
	assert.Equal(t, "character-design", category.Slug)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").WillReturnRows(mock.NewRows([]string{"id"}))

	r := testutils.SetupTestRouter()
	r.DELETE("/categories/:id", DeleteCategory)

	req, _ := http.NewRequest(http.MethodDelete, "/categories/unknown-id", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
