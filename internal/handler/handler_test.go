package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"peppolsheet/internal/infra"
	"peppolsheet/internal/middleware"
	"peppolsheet/internal/model"
	"peppolsheet/internal/repository"
	"peppolsheet/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

const invoiceData = `{
  "id": "INV-2024-001",
  "issueDate": "2024-01-15",
  "dueDate": "2024-02-14",
  "currencyCode": "EUR",
  "buyerReference": "PO-4711",
  "accountingSupplierParty": {
    "endpointId": {"schemeId": "0106", "value": "12345678"},
    "name": "Acme Supplies BV",
    "vatNumber": "NL123456789B01",
    "postalAddress": {"streetName": "Keizersgracht 1", "cityName": "Amsterdam", "postalZone": "1015AA", "countryCode": "NL"}
  },
  "accountingCustomerParty": {
    "endpointId": {"schemeId": "9930", "value": "DE123456789"},
    "name": "Buyer GmbH",
    "postalAddress": {"streetName": "Hauptstrasse 5", "cityName": "Berlin", "postalZone": "10115", "countryCode": "DE"}
  },
  "invoiceLines": [
    {"id": "1", "quantity": 10, "unitCode": "C62", "unitPrice": 10.00, "lineExtensionAmount": 100.00,
     "name": "Widget", "taxCategory": {"id": "S", "percent": 21}}
  ],
  "taxTotal": {"taxAmount": 21.00, "taxSubtotals": [
    {"taxableAmount": 100.00, "taxAmount": 21.00, "taxCategory": {"id": "S", "percent": 21}}
  ]},
  "legalMonetaryTotal": {"lineExtensionAmount": 100.00, "taxExclusiveAmount": 100.00,
    "taxInclusiveAmount": 121.00, "payableAmount": 121.00}
}`

const creditNoteData = `{
  "id": "CN-2024-001",
  "issueDate": "2024-01-20",
  "currencyCode": "EUR",
  "billingReference": "INV-2024-001",
  "accountingSupplierParty": {
    "name": "Acme Supplies BV",
    "vatNumber": "NL123456789B01",
    "postalAddress": {"streetName": "Keizersgracht 1", "cityName": "Amsterdam", "postalZone": "1015AA", "countryCode": "NL"}
  },
  "accountingCustomerParty": {
    "name": "Buyer GmbH",
    "postalAddress": {"streetName": "Hauptstrasse 5", "cityName": "Berlin", "postalZone": "10115", "countryCode": "DE"}
  },
  "creditNoteLines": [
    {"id": "1", "quantity": 2, "unitPrice": "10.00", "lineExtensionAmount": "20.00",
     "name": "Returned widget", "taxCategory": {"id": "S", "percent": 21}}
  ],
  "taxTotal": {"taxAmount": "4.20"},
  "legalMonetaryTotal": {"lineExtensionAmount": "20.00", "taxExclusiveAmount": "20.00",
    "taxInclusiveAmount": "24.20", "payableAmount": "24.20"}
}`

// ── Stubs ────────────────────────────────────────────────────────────────────

type memEntities struct{}

var _ repository.LegalEntityRepository = memEntities{}

func (memEntities) Create(context.Context, *model.LegalEntity) error { return nil }
func (memEntities) FindForTenant(_ context.Context, tenantID string, id int64) (*model.LegalEntity, error) {
	if tenantID == "tenant-a" && id == 1 {
		return &model.LegalEntity{ID: 1, TenantID: tenantID, StorecoveLegalEntityID: 555}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type memIdentifiers struct{}

var _ repository.PeppolIdentifierRepository = memIdentifiers{}

func (memIdentifiers) Upsert(context.Context, *model.PeppolIdentifier) error { return nil }
func (memIdentifiers) FindForTenant(_ context.Context, tenantID string, id int64) (*model.PeppolIdentifier, error) {
	if tenantID == "tenant-a" && id == 2 {
		return &model.PeppolIdentifier{ID: 2, TenantID: tenantID, Scheme: "9930", Identifier: "DE123456789"}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type memSubmissions struct {
	mu   sync.Mutex
	rows []model.Submission
}

var _ repository.SubmissionRepository = (*memSubmissions)(nil)

func (m *memSubmissions) Create(_ context.Context, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *s)
	return nil
}
func (m *memSubmissions) FindByID(_ context.Context, tenantID string, id uuid.UUID) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].TenantID == tenantID && m.rows[i].ID == id {
			return &m.rows[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *memSubmissions) List(_ context.Context, f repository.SubmissionFilter) ([]model.Submission, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Submission
	for _, r := range m.rows {
		if f.TenantID == "" || r.TenantID == f.TenantID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

type fakeGateway struct {
	calls int
	err   error
}

func (g *fakeGateway) SendDocument(context.Context, infra.DocumentSubmission) (*infra.SubmissionResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &infra.SubmissionResult{GUID: "sc-guid", Raw: json.RawMessage(`{"guid":"sc-guid"}`)}, nil
}

type memIdempotency struct {
	results map[string][]byte
	locks   map[string]bool
	// afterLookup, when set, runs once after the next Lookup has read the
	// store and before it returns.
	afterLookup func()
}

var _ service.IdempotencyStore = (*memIdempotency)(nil)

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{results: map[string][]byte{}, locks: map[string]bool{}}
}

func (m *memIdempotency) Lookup(_ context.Context, tenant, key string) ([]byte, bool, error) {
	b, ok := m.results[tenant+"/"+key]
	if hook := m.afterLookup; hook != nil {
		m.afterLookup = nil
		hook()
	}
	return b, ok, nil
}
func (m *memIdempotency) Reserve(_ context.Context, tenant, key string) (bool, error) {
	if m.locks[tenant+"/"+key] {
		return false, nil
	}
	m.locks[tenant+"/"+key] = true
	return true, nil
}
func (m *memIdempotency) Complete(_ context.Context, tenant, key string, body []byte) error {
	m.results[tenant+"/"+key] = body
	delete(m.locks, tenant+"/"+key)
	return nil
}
func (m *memIdempotency) Release(_ context.Context, tenant, key string) error {
	delete(m.locks, tenant+"/"+key)
	return nil
}

// ── Harness ──────────────────────────────────────────────────────────────────

type harness struct {
	router      *gin.Engine
	gateway     *fakeGateway
	idem        *memIdempotency
	submissions *memSubmissions
}

func newHarness(tenant string) *harness {
	h := &harness{gateway: &fakeGateway{}, idem: newMemIdempotency(), submissions: &memSubmissions{}}
	docs := NewDocumentsHandler(service.NewDocumentService(memEntities{}, memIdentifiers{}, h.submissions, h.gateway, nil), h.idem)
	subs := NewSubmissionsHandler(service.NewSubmissionService(h.submissions))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.SupabaseClaims{
			Email:            "user@example.com",
			AppMetadata:      middleware.AppMetadata{TenantID: tenant},
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		})
		c.Next()
	})
	r.POST("/api/storecove/invoices/create-from-json", docs.CreateFromJSON)
	r.POST("/api/storecove/documents/validate", docs.Validate)
	r.POST("/api/storecove/documents/send-xml", docs.SendXML)
	r.GET("/api/submissions", subs.List)
	r.GET("/api/submissions/:id", subs.Get)
	h.router = r
	return h
}

func (h *harness) post(path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func createBody(docType, data string, extra string) string {
	return `{"legal_entity_id": 1, "recipient_peppol_identifier_id": 2, "document_type": "` + docType +
		`", "document_data": ` + data + extra + `}`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ── create-from-json ─────────────────────────────────────────────────────────

func TestCreateFromJSON_ValidInvoice(t *testing.T) {
	h := newHarness("tenant-a")

	w := h.post("/api/storecove/invoices/create-from-json", createBody("invoice", invoiceData, ""))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	xml := body["ubl_xml"].(string)
	assert.Contains(t, xml, "<Invoice")
	assert.Contains(t, xml, "InvoiceTypeCode")
	assert.NotContains(t, body, "submission")
	assert.Equal(t, 0, h.gateway.calls)
}

func TestCreateFromJSON_LineExtensionMismatch(t *testing.T) {
	h := newHarness("tenant-a")
	data := strings.Replace(invoiceData, `"legalMonetaryTotal": {"lineExtensionAmount": 100.00`, `"legalMonetaryTotal": {"lineExtensionAmount": 90`, 1)

	w := h.post("/api/storecove/invoices/create-from-json", createBody("invoice", data, ""))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "document validation failed", body["error"])
	assert.Contains(t, w.Body.String(), "line extension amount mismatch")
	assert.NotNil(t, body["validation_warnings"])
}

func TestCreateFromJSON_CreditNote(t *testing.T) {
	h := newHarness("tenant-a")

	w := h.post("/api/storecove/invoices/create-from-json", createBody("credit_note", creditNoteData, ""))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Contains(t, body["ubl_xml"], "<CreditNote")
	assert.Contains(t, body["ubl_xml"], "<cbc:CreditNoteTypeCode>381</cbc:CreditNoteTypeCode>")
	assert.Contains(t, w.Body.String(), "taxTotal.taxSubtotals not supplied")
}

func TestCreateFromJSON_InputErrors(t *testing.T) {
	h := newHarness("tenant-a")
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"document_type":`, "invalid request body"},
		{"unknown document type", createBody("receipt", invoiceData, ""), "document_type must be one of"},
		{"unknown top-level field", createBody("invoice", invoiceData, `, "sendImmediately": true`), "unknown field"},
		{"missing legal entity", `{"recipient_peppol_identifier_id": 2, "document_type": "invoice", "document_data": {}}`, "legal_entity_id is required"},
		{"wrong model for type", createBody("order", invoiceData, ""), "document_data"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := h.post("/api/storecove/invoices/create-from-json", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tc.want)
		})
	}
}

func TestCreateFromJSON_SendImmediately(t *testing.T) {
	h := newHarness("tenant-a")

	w := h.post("/api/storecove/invoices/create-from-json", createBody("invoice", invoiceData, `, "send_immediately": true`))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sub := decode(t, w)["submission"].(map[string]interface{})
	assert.Equal(t, "sent", sub["status"])
	assert.Equal(t, "sc-guid", sub["gateway_guid"])
	assert.Equal(t, 1, h.gateway.calls)

	detail := h.get("/api/submissions/" + sub["id"].(string))
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "INV-2024-001")
}

func TestCreateFromJSON_TransmissionFailureIs502(t *testing.T) {
	h := newHarness("tenant-a")
	h.gateway.err = &infra.GatewayError{StatusCode: http.StatusServiceUnavailable, Body: "maintenance"}

	w := h.post("/api/storecove/invoices/create-from-json", createBody("invoice", invoiceData, `, "send_immediately": true`))

	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, "document generated but transmission failed", body["error"])
	assert.Contains(t, body["details"], "503")
	assert.Contains(t, body["ubl_xml"], "<Invoice")

	list := decode(t, h.get("/api/submissions?status=failed"))
	assert.EqualValues(t, 1, list["total"])
}

func TestCreateFromJSON_ForeignLegalEntityIs404(t *testing.T) {
	h := newHarness("tenant-b")

	w := h.post("/api/storecove/invoices/create-from-json", createBody("invoice", invoiceData, `, "send_immediately": true`))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, h.gateway.calls)
}

func TestCreateFromJSON_IdempotencyReplays(t *testing.T) {
	h := newHarness("tenant-a")
	body := createBody("invoice", invoiceData, `, "send_immediately": true`)

	first := h.post("/api/storecove/invoices/create-from-json", body, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get(IdempotentReplayedHeader))

	second := h.post("/api/storecove/invoices/create-from-json", body, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, h.gateway.calls)
}

func TestCreateFromJSON_IdempotencyRequestCompletingBeforeReserve(t *testing.T) {
	h := newHarness("tenant-a")
	body := createBody("invoice", invoiceData, `, "send_immediately": true`)

	// the first request runs to completion while the second sits between its
	// lookup and its reservation
	var first *httptest.ResponseRecorder
	h.idem.afterLookup = func() {
		first = h.post("/api/storecove/invoices/create-from-json", body, IdempotencyKeyHeader, "key-race")
	}
	second := h.post("/api/storecove/invoices/create-from-json", body, IdempotencyKeyHeader, "key-race")

	require.NotNil(t, first)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, h.gateway.calls)
	assert.False(t, h.idem.locks["tenant-a/key-race"])
}

func TestCreateFromJSON_IdempotencyInFlightConflicts(t *testing.T) {
	h := newHarness("tenant-a")
	h.idem.locks["tenant-a/key-2"] = true

	w := h.post("/api/storecove/invoices/create-from-json", createBody("invoice", invoiceData, ""), IdempotencyKeyHeader, "key-2")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateFromJSON_FailedRequestReleasesKey(t *testing.T) {
	h := newHarness("tenant-a")
	h.gateway.err = &infra.GatewayError{StatusCode: http.StatusBadGateway}
	body := createBody("invoice", invoiceData, `, "send_immediately": true`)

	w := h.post("/api/storecove/invoices/create-from-json", body, IdempotencyKeyHeader, "key-3")
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, h.idem.locks["tenant-a/key-3"])

	h.gateway.err = nil
	w = h.post("/api/storecove/invoices/create-from-json", body, IdempotencyKeyHeader, "key-3")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, h.gateway.calls)
}

// ── validate / send-xml ──────────────────────────────────────────────────────

func TestValidate_DryRun(t *testing.T) {
	h := newHarness("tenant-a")
	data := strings.Replace(invoiceData, `"taxInclusiveAmount": 121.00`, `"taxInclusiveAmount": 121.0001`, 1)

	w := h.post("/api/storecove/documents/validate", `{"document_type": "invoice", "document_data": `+data+`}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["valid"])
	assert.Contains(t, w.Body.String(), "taxInclusiveAmount mismatch")
}

func TestSendXML_ReplaysReturnedXML(t *testing.T) {
	h := newHarness("tenant-a")
	h.gateway.err = &infra.GatewayError{StatusCode: http.StatusServiceUnavailable}
	failed := decode(t, h.post("/api/storecove/invoices/create-from-json", createBody("invoice", invoiceData, `, "send_immediately": true`)))
	h.gateway.err = nil

	payload, err := json.Marshal(map[string]interface{}{
		"legal_entity_id":                1,
		"recipient_peppol_identifier_id": 2,
		"document_type":                  "invoice",
		"ubl_xml":                        failed["ubl_xml"],
	})
	require.NoError(t, err)

	w := h.post("/api/storecove/documents/send-xml", string(payload))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"sent"`)
}

func TestSendXML_RejectsBrokenXML(t *testing.T) {
	h := newHarness("tenant-a")

	w := h.post("/api/storecove/documents/send-xml",
		`{"legal_entity_id": 1, "recipient_peppol_identifier_id": 2, "document_type": "invoice", "ubl_xml": "<Invoice>"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "XML is not well-formed")
	assert.Equal(t, 0, h.gateway.calls)
}

// ── submissions ──────────────────────────────────────────────────────────────

func TestSubmissions_GetValidatesID(t *testing.T) {
	h := newHarness("tenant-a")

	assert.Equal(t, http.StatusBadRequest, h.get("/api/submissions/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, h.get("/api/submissions/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, h.get("/api/submissions?limit=500").Code)
}
