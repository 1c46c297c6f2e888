package permission

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	common_models "go-cmms/internal/common/models"
	"go-cmms/internal/config"
	"go-cmms/internal/middleware"
	"go-cmms/pkg/permissions"
	"go-cmms/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	app    *fiber.App
	tokens *utils.TokenManager
	repo   *MockRepo
}

func newAPIFixture(t *testing.T, users ...*common_models.User) *apiFixture {
	t.Helper()

	repo := newMockRepo(users...)
	svc, _, _ := newService(repo)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	gate := middleware.NewPermissionGate(svc, nil, nil)

	app := fiber.New()
	NewPermissionApi(NewPermissionController(svc), &config.Config{}, tokens, gate).Setup(app)

	return &apiFixture{app: app, tokens: tokens, repo: repo}
}

func (f *apiFixture) do(t *testing.T, as *common_models.User, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	token, err := f.tokens.GenerateToken(as.ID, string(as.Role))
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestOverrideRequiresSettingsEdit(t *testing.T) {
	admin := activeUser(permissions.RoleAdmin, nil)
	viewer := activeUser(permissions.RoleVisualiseur, nil)
	target := activeUser(permissions.RoleProd, permissions.ResolveDefaults(permissions.RoleProd).Partial())
	f := newAPIFixture(t, admin, viewer, target)

	path := "/api/permissions/users/" + target.ID.Hex() + "/modules/vendors"
	body := SetModuleRequest{View: true}

	resp := f.do(t, viewer, http.MethodPut, path, body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, permissions.NoAccess, f.repo.Users[target.ID.Hex()].Permissions[permissions.ModuleVendors])

	resp = f.do(t, admin, http.MethodPut, path, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, permissions.ViewOnly, f.repo.Users[target.ID.Hex()].Permissions[permissions.ModuleVendors])

	var got UserPermissions
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, permissions.ViewOnly, got.Effective[permissions.ModuleVendors])
}

func TestOverrideUnknownModuleIsBadRequest(t *testing.T) {
	admin := activeUser(permissions.RoleAdmin, nil)
	f := newAPIFixture(t, admin)

	resp := f.do(t, admin, http.MethodPut, "/api/permissions/users/"+admin.ID.Hex()+"/modules/payroll", SetModuleRequest{View: true})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeactivatedAdminIsDenied(t *testing.T) {
	admin := activeUser(permissions.RoleAdmin, nil)
	admin.Status = common_models.UserStatusInactive
	f := newAPIFixture(t, admin)

	resp := f.do(t, admin, http.MethodGet, "/api/permissions/roles", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMyPermissions(t *testing.T) {
	tech := activeUser(permissions.RoleTechnicien, nil)
	f := newAPIFixture(t, tech)

	resp := f.do(t, tech, http.MethodGet, "/api/me/permissions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got UserPermissions
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, permissions.RoleTechnicien, got.Role)
	assert.True(t, permissions.ResolveDefaults(permissions.RoleTechnicien).Equal(got.Effective))
}

func TestRoleExportRequiresImportExport(t *testing.T) {
	admin := activeUser(permissions.RoleAdmin, nil)
	tech := activeUser(permissions.RoleTechnicien, nil)
	f := newAPIFixture(t, admin, tech)

	resp := f.do(t, tech, http.MethodGet, "/api/permissions/roles/export", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = f.do(t, admin, http.MethodGet, "/api/permissions/roles/export", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get(fiber.HeaderContentType))
}

func TestBackfillEndpoint(t *testing.T) {
	admin := activeUser(permissions.RoleAdmin, permissions.ResolveDefaults(permissions.RoleAdmin).Partial())
	legacy := activeUser(permissions.RoleLogistique, permissions.PartialMatrix{permissions.ModuleInventory: permissions.ViewEdit})
	f := newAPIFixture(t, admin, legacy)

	resp := f.do(t, admin, http.MethodPost, "/api/permissions/backfill", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report BackfillReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, permissions.ViewEdit, f.repo.Users[legacy.ID.Hex()].Permissions[permissions.ModuleDocumentations])
}

func (f *apiFixture) upload(t *testing.T, as *common_models.User, path string, file []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "permissions.xlsx")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	token, err := f.tokens.GenerateToken(as.ID, string(as.Role))
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestImportUserPermissions(t *testing.T) {
	admin := activeUser(permissions.RoleAdmin, nil)
	tech := activeUser(permissions.RoleTechnicien, nil)
	target := activeUser(permissions.RoleProd, permissions.ResolveDefaults(permissions.RoleProd).Partial())
	f := newAPIFixture(t, admin, tech, target)

	effective := permissions.ResolveDefaults(permissions.RoleProd)
	effective[permissions.ModuleVendors] = permissions.Full
	buf, err := ExportUserPermissions(&UserPermissions{Username: "target", Role: permissions.RoleProd, Effective: effective})
	require.NoError(t, err)
	sheet := buf.Bytes()

	path := "/api/permissions/users/" + target.ID.Hex() + "/import"

	resp := f.upload(t, tech, path, sheet)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, permissions.NoAccess, f.repo.Users[target.ID.Hex()].Permissions[permissions.ModuleVendors])

	resp = f.upload(t, admin, path, sheet)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, permissions.Full, f.repo.Users[target.ID.Hex()].Permissions[permissions.ModuleVendors])
	assert.Len(t, f.repo.Users[target.ID.Hex()].Permissions, len(permissions.AllModules))

	resp = f.upload(t, admin, path, []byte("not a spreadsheet"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
