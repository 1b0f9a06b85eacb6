package voucher

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (chi.Router, *memoryVoucherRepo) {
	t.Helper()
	repo := newMemoryVoucherRepo()
	svc := newTestService(repo, nil)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/api/vouchers", handler.MountRoutes)
	return r, repo
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateVoucherEndpoint(t *testing.T) {
	router, repo := newTestRouter(t)

	body := fmt.Sprintf(`{"type":"CREDIT","date":"2025-01-10","narration":"cash sale","debitAccountId":%d,"creditAccountId":%d,"amount":1000,"confirm":true}`, accCash, accSales)
	rec := doJSON(t, router, http.MethodPost, "/api/vouchers/", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		VoucherNumber *string `json:"voucherNumber"`
		Confirmed     bool    `json:"confirmed"`
		ContraClass   string  `json:"contraClass"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Confirmed)
	require.NotNil(t, resp.VoucherNumber)
	require.Equal(t, "CV-2025-0001", *resp.VoucherNumber)
	require.Empty(t, resp.ContraClass)
	require.Len(t, repo.entries, 2)
}

func TestCreateVoucherEndpointValidation(t *testing.T) {
	router, repo := newTestRouter(t)

	// Shape errors are caught before the service runs.
	rec := doJSON(t, router, http.MethodPost, "/api/vouchers/",
		`{"type":"PAYMENT","date":"2025-01-10","debitAccountId":1,"creditAccountId":3,"amount":10}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/vouchers/",
		`{"type":"CREDIT","date":"10/01/2025","debitAccountId":1,"creditAccountId":3,"amount":10}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Semantic rejections carry the offending field.
	body := fmt.Sprintf(`{"type":"CREDIT","date":"2025-01-10","debitAccountId":%d,"creditAccountId":%d,"amount":-5}`, accCash, accSales)
	rec = doJSON(t, router, http.MethodPost, "/api/vouchers/", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "amount", problem.Field)
	require.Empty(t, repo.vouchers)
}

func TestContraVoucherEndpointClassifies(t *testing.T) {
	router, _ := newTestRouter(t)

	body := fmt.Sprintf(`{"type":"CONTRA","date":"2025-02-01","narration":"to bank","debitAccountId":%d,"creditAccountId":%d,"amount":500,"confirm":true}`, accBank, accCash)
	rec := doJSON(t, router, http.MethodPost, "/api/vouchers/", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ContraClass string `json:"contraClass"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(ContraDeposit), resp.ContraClass)
}

func TestConfirmAndDeleteEndpoints(t *testing.T) {
	router, repo := newTestRouter(t)

	body := fmt.Sprintf(`{"type":"DEBIT","date":"2025-03-01","narration":"rent","debitAccountId":%d,"creditAccountId":%d,"amount":250}`, accRent, accCash)
	rec := doJSON(t, router, http.MethodPost, "/api/vouchers/", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/api/vouchers/"+created.ID+"/confirm", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/vouchers/"+created.ID+"/confirm", "", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/vouchers/"+created.ID, "", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/vouchers/"+created.ID+"?force=true", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, repo.entries)
}

func TestIdempotencyKeyHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	body := fmt.Sprintf(`{"type":"CREDIT","date":"2025-01-10","narration":"inv 12","debitAccountId":%d,"creditAccountId":%d,"amount":75,"confirm":true}`, accBank, accSales)
	headers := map[string]string{"Idempotency-Key": "inv-12"}

	rec := doJSON(t, router, http.MethodPost, "/api/vouchers/", body, headers)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/vouchers/", body, headers)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestListVouchersFilteredByType(t *testing.T) {
	router, _ := newTestRouter(t)

	post := func(body string) {
		rec := doJSON(t, router, http.MethodPost, "/api/vouchers/", body, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	post(fmt.Sprintf(`{"type":"CREDIT","date":"2025-01-10","debitAccountId":%d,"creditAccountId":%d,"amount":10}`, accCash, accSales))
	post(fmt.Sprintf(`{"type":"DEBIT","date":"2025-01-11","debitAccountId":%d,"creditAccountId":%d,"amount":20}`, accRent, accCash))

	rec := doJSON(t, router, http.MethodGet, "/api/vouchers/?type=DEBIT", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Vouchers []voucherResponse `json:"vouchers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Vouchers, 1)
	require.Equal(t, TypeDebit, resp.Vouchers[0].Type)

	rec = doJSON(t, router, http.MethodGet, "/api/vouchers/?type=BOGUS", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
