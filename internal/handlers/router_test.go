package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/SscSPs/school_ledger/internal/handlers"
	"github.com/SscSPs/school_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type testServices struct {
	account   *MockAccountService
	journal   *MockJournalService
	period    *MockFiscalPeriodService
	reporting *MockReportingService
}

// newTestRouter mirrors the production tenant group without rate limiting.
func newTestRouter() (*gin.Engine, testServices) {
	gin.SetMode(gin.TestMode)
	if err := handlers.RegisterValidators(); err != nil {
		panic(err)
	}

	svcs := testServices{
		account:   new(MockAccountService),
		journal:   new(MockJournalService),
		period:    new(MockFiscalPeriodService),
		reporting: new(MockReportingService),
	}

	router := gin.New()
	tenant := router.Group("/api/v1/tenants/:tenantID", middleware.AuthMiddleware(testJWTSecret, ""), middleware.TenantAccess(false))
	handlers.RegisterAccountRoutes(tenant, svcs.account, svcs.reporting)
	handlers.RegisterFiscalPeriodRoutes(tenant, svcs.period)
	handlers.RegisterJournalRoutes(tenant, svcs.journal)
	handlers.RegisterReportingRoutes(tenant, svcs.reporting)
	return router, svcs
}

// doRequest serves one request; body is JSON-encoded unless nil.
func doRequest(router *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}

	var req *http.Request
	if reader != nil {
		req, _ = http.NewRequest(method, url, reader)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
