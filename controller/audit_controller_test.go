// controller/audit_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/clearledger/vigil/api/audit"
	"github.com/clearledger/vigil/api/controller"
	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/test/mock"
	"github.com/clearledger/vigil/api/util"
)

func setupRouter(auditController *controller.AuditController, withOrg bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if withOrg {
		r.Use(func(c *gin.Context) {
			c.Set("organizationID", "org-1")
			c.Set("actorID", "analyst-7")
			c.Next()
		})
	}
	api := r.Group("/")
	auditController.RegisterRoutes(api)
	return r
}

func TestAuditController(t *testing.T) {
	// Initialize logger
	logger.InitLogger("../logging")
	defer logger.Sync()

	mockAuditService := new(mock.MockAuditService)
	auditController := controller.NewAuditController(
		mockAuditService,
		util.NewCacheService(),
		util.NewNotificationService(),
	)
	router := setupRouter(auditController, true)

	t.Run("ListAuditLogs_Success", func(t *testing.T) {
		page := &audit.Page{
			Data: []audit.AuditLogEntry{
				{ID: "entry-1", SequenceNumber: 2},
				{ID: "entry-2", SequenceNumber: 1},
			},
			Pagination: audit.Pagination{Page: 1, Limit: 20, Total: 2, TotalPages: 1},
		}
		mockAuditService.On("List", tmock.Anything, "org-1", tmock.Anything).
			Return(page, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response audit.Page
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Len(t, response.Data, 2)
		assert.Equal(t, int64(2), response.Pagination.Total)
	})

	t.Run("ListAuditLogs_Failure_InvalidPagination", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs?page=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListAuditLogs_Failure_InvalidDate", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs?startDate=31-12-2025", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GetAuditLog_Success", func(t *testing.T) {
		mockAuditService.On("Get", tmock.Anything, "org-1", "entry-1").
			Return(&audit.AuditLogEntry{ID: "entry-1", SequenceNumber: 1}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs/entry-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetAuditLog_Failure_NotFound", func(t *testing.T) {
		mockAuditService.On("Get", tmock.Anything, "org-1", "missing").
			Return(nil, vigil_errors.ErrAuditLogNotFound).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GetEntityHistory_Success", func(t *testing.T) {
		page := &audit.Page{
			Data:       []audit.AuditLogEntry{{ID: "entry-1", EntityID: "client-1"}},
			Pagination: audit.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1},
		}
		mockAuditService.On("EntityHistory", tmock.Anything, "org-1", "CLIENT", "client-1", 1, 20).
			Return(page, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs/entity/CLIENT/client-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("VerifyChain_Success", func(t *testing.T) {
		mockAuditService.On("Verify", tmock.Anything, "org-1", tmock.Anything).
			Return(&audit.VerificationResult{Valid: true, EntriesVerified: 10}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/audit-logs/verify", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result audit.VerificationResult
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.True(t, result.Valid)
		assert.Equal(t, 10, result.EntriesVerified)
	})

	t.Run("VerifyChain_TamperedChain", func(t *testing.T) {
		// A broken chain is a 200 with valid=false, not an error
		mockAuditService.On("Verify", tmock.Anything, "org-1", tmock.Anything).
			Return(&audit.VerificationResult{
				Valid:           false,
				EntriesVerified: 4,
				FirstInvalidEntry: &audit.InvalidEntry{
					ID:             "entry-5",
					SequenceNumber: 5,
					Error:          audit.FailureDataHashMismatch,
				},
			}, nil).Once()

		body := strings.NewReader(`{"startSequence":1,"endSequence":10}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/audit-logs/verify", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result audit.VerificationResult
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.False(t, result.Valid)
		assert.Equal(t, audit.FailureDataHashMismatch, result.FirstInvalidEntry.Error)
	})

	t.Run("VerifyChain_Failure_InvalidRange", func(t *testing.T) {
		mockAuditService.On("Verify", tmock.Anything, "org-1", tmock.Anything).
			Return(nil, vigil_errors.ErrInvalidVerifyRange).Once()

		body := strings.NewReader(`{"startSequence":0}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/audit-logs/verify", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ExportAuditLogs_JSON_Success", func(t *testing.T) {
		mockAuditService.On("Export", tmock.Anything, "org-1", tmock.Anything).
			Return(&audit.ExportResult{
				Format:       audit.FormatJSON,
				Data:         []audit.AuditLogEntry{{ID: "entry-1"}},
				ExportedAt:   time.Now().UTC(),
				TotalRecords: 1,
			}, nil).Once()

		body := strings.NewReader(`{"format":"json"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/audit-logs/export", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("ExportAuditLogs_CSV_Success", func(t *testing.T) {
		mockAuditService.On("Export", tmock.Anything, "org-1", tmock.Anything).
			Return(&audit.ExportResult{
				Format:       audit.FormatCSV,
				CSV:          "id,entityType\n",
				ExportedAt:   time.Now().UTC(),
				TotalRecords: 0,
			}, nil).Once()

		body := strings.NewReader(`{"format":"csv"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/audit-logs/export", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Equal(t, "id,entityType\n", w.Body.String())
	})

	t.Run("ExportAuditLogs_Failure_InvalidFormat", func(t *testing.T) {
		mockAuditService.On("Export", tmock.Anything, "org-1", tmock.Anything).
			Return(nil, vigil_errors.ErrInvalidExportFormat).Once()

		body := strings.NewReader(`{"format":"xml"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/audit-logs/export", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mockAuditService.AssertExpectations(t)
}

func TestAuditControllerRequiresOrganization(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()

	mockAuditService := new(mock.MockAuditService)
	auditController := controller.NewAuditController(
		mockAuditService,
		util.NewCacheService(),
		util.NewNotificationService(),
	)
	router := setupRouter(auditController, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/audit-logs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuditService.AssertNotCalled(t, "List")
}
