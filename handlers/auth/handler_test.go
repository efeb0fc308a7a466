package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"illusly-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func roleRouter(handler gin.HandlerFunc, method, path, role string) *gin.Engine {
	r := testutils.SetupTestRouter()
	r.Handle(method, path, func(c *gin.Context) {
		c.Set("user_id", "user-uuid-1")
		c.Set("user_role", role)
		handler(c)
	})
	return r
}

func TestGetUserRole_User(t *testing.T) {
	r := roleRouter(GetUserRole, http.MethodGet, "/auth/role", "USER")

	req, _ := http.NewRequest(http.MethodGet, "/auth/role", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "USER", respBody["role"])
	assert.Equal(t, false, respBody["isIllustrator"])
	assert.Equal(t, false, respBody["isAdmin"])
}

func TestGetUserRole_Admin(t *testing.T) {
	r := roleRouter(GetUserRole, http.MethodGet, "/auth/role", "ADMIN")

	req, _ := http.NewRequest(http.MethodGet, "/auth/role", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, true, respBody["isIllustrator"])
	assert.Equal(t, true, respBody["isAdmin"])
}

func TestUpdateUserRole_InvalidRole(t *testing.T) {
	r := roleRouter(UpdateUserRole, http.MethodPost, "/auth/role", "USER")

	req, _ := http.NewRequest(http.MethodPost, "/auth/role", bytes.NewBufferString(`{"role":"SUPERUSER"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateUserRole_AdminRefused(t *testing.T) {
	// Même un admin ne peut pas s'attribuer ADMIN par ce chemin
	for _, role := range []string{"USER", "ADMIN"} {
		r := roleRouter(UpdateUserRole, http.MethodPost, "/auth/role", role)

		req, _ := http.NewRequest(http.MethodPost, "/auth/role", bytes.NewBufferString(`{"role":"ADMIN"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusForbidden, resp.Code)
	}
}

func TestUpdateUserRole_AlreadyIllustrator(t *testing.T) {
	r := roleRouter(UpdateUserRole, http.MethodPost, "/auth/role", "ILLUSTRATOR")

	req, _ := http.NewRequest(http.MethodPost, "/auth/role", bytes.NewBufferString(`{"role":"ILLUSTRATOR"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Already registered as illustrator", respBody["error"])
}

func TestUpdateUserRole_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := roleRouter(UpdateUserRole, http.MethodPost, "/auth/role", "USER")

	req, _ := http.NewRequest(http.MethodPost, "/auth/role", bytes.NewBufferString(`{"role":"ILLUSTRATOR"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "ILLUSTRATOR", respBody["role"])
}
