package httpapi

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/report"
)

type fakeCompliance struct {
	report *domain.Report
	err    error
	docs   []*domain.RawDocument
}

func (f *fakeCompliance) Check(_ context.Context, raw *domain.RawDocument) (*domain.Report, error) {
	f.docs = append(f.docs, raw)
	return f.report, f.err
}

func (f *fakeCompliance) CheckURI(_ context.Context, uri string) (*domain.Report, error) {
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, uri)
}

type fakeRules struct {
	rules []domain.ComplianceRule
}

func (f *fakeRules) List() []domain.ComplianceRule { return f.rules }

func (f *fakeRules) Get(id string) (domain.ComplianceRule, error) {
	for _, r := range f.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.ComplianceRule{}, domain.ErrNotFound
}

var sampleRules = []domain.ComplianceRule{
	{ID: "governing_law", Description: "Governing law and jurisdiction must be specified",
		Keywords: []string{"governing law", "laws of"}, Severity: domain.SeverityHigh},
	{ID: "force_majeure", Description: "Force majeure clause should be included",
		Keywords: []string{"force majeure"}, Severity: domain.SeverityLow},
}

func sampleReport() *domain.Report {
	return &domain.Report{
		ID:          "rep-42",
		DocumentURI: "msa.txt",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Results: []domain.EvaluationResult{
			{Rule: sampleRules[0], Compliant: true, MatchedKeywords: []string{"laws of"},
				Evidence: domain.KeywordEvidence, Method: domain.MethodKeyword},
			{Rule: sampleRules[1], Evidence: "- Compliance NO", Method: domain.MethodLLM},
		},
	}
}

func newTestServer(t *testing.T, compliance *fakeCompliance, metrics http.Handler) *Server {
	t.Helper()
	s, err := New(Config{ListenAddr: "127.0.0.1:0", Version: "test"}, Services{
		Compliance: compliance,
		Rules:      &fakeRules{rules: sampleRules},
		Metrics:    metrics,
	})
	require.NoError(t, err)
	return s
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(FormField, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, CheckPath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, Services{Compliance: &fakeCompliance{}, Rules: &fakeRules{}})
	assert.Error(t, err)

	_, err = New(Config{ListenAddr: ":0"}, Services{Rules: &fakeRules{}})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeCompliance{}, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestListRules(t *testing.T) {
	s := newTestServer(t, &fakeCompliance{}, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rules []RuleBody `json:"rules"`
		Count int        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Rules, 2)
	assert.Equal(t, "governing_law", body.Rules[0].ID)
	assert.Equal(t, "HIGH", body.Rules[0].Severity)
	assert.Equal(t, "force_majeure", body.Rules[1].ID)
}

func TestGetRule(t *testing.T) {
	s := newTestServer(t, &fakeCompliance{}, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/rules/force_majeure", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body RuleBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"force majeure"}, body.Keywords)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/rules/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheck_CSV(t *testing.T) {
	compliance := &fakeCompliance{report: sampleReport()}
	s := newTestServer(t, compliance, nil)

	rec := serve(s, uploadRequest(t, "msa.txt", []byte("This Agreement shall be governed by the laws of Delaware.")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=compliance_report.csv", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "rep-42", rec.Header().Get("X-Report-Id"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, report.Header, records[0])
	assert.Equal(t, "Governing law and jurisdiction must be specified", records[1][0])
	assert.Equal(t, "YES", records[1][2])
	assert.Equal(t, "NO", records[2][2])

	require.Len(t, compliance.docs, 1)
	doc := compliance.docs[0]
	assert.Equal(t, "msa.txt", doc.URI)
	assert.Equal(t, "text/plain", doc.MIMEType)
	assert.Equal(t, "upload", doc.Metadata["source"])
}

func TestCheck_JSON(t *testing.T) {
	s := newTestServer(t, &fakeCompliance{report: sampleReport()}, nil)

	req := uploadRequest(t, "msa.txt", []byte("text"))
	req.Header.Set("Accept", "application/json")
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "rep-42", doc["id"])
}

func TestCheck_SniffsPDF(t *testing.T) {
	compliance := &fakeCompliance{report: sampleReport()}
	s := newTestServer(t, compliance, nil)

	rec := serve(s, uploadRequest(t, "upload", []byte("%PDF-1.4\n%binary")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, compliance.docs, 1)
	assert.Equal(t, "application/pdf", compliance.docs[0].MIMEType)
}

func TestCheck_ExtensionBeatsSniffing(t *testing.T) {
	compliance := &fakeCompliance{report: sampleReport()}
	s := newTestServer(t, compliance, nil)

	rec := serve(s, uploadRequest(t, "policy.rtf", []byte("plain looking clause text")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, compliance.docs, 1)
	assert.NotContains(t, compliance.docs[0].MIMEType, "text/plain")
}

func TestCheck_MissingFile(t *testing.T) {
	compliance := &fakeCompliance{report: sampleReport()}
	s := newTestServer(t, compliance, nil)

	req := httptest.NewRequest(http.MethodPost, CheckPath, strings.NewReader("nothing"))
	req.Header.Set("Content-Type", "text/plain")
	rec := serve(s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Empty(t, compliance.docs)
}

func TestCheck_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unsupported type", fmt.Errorf("scan.png: %w", domain.ErrUnsupportedType), http.StatusUnsupportedMediaType},
		{"empty document", domain.ErrEmptyDocument, http.StatusUnprocessableEntity},
		{"extraction failed", domain.ErrExtractionFailed, http.StatusUnprocessableEntity},
		{"missing credential", domain.ErrMissingCredential, http.StatusServiceUnavailable},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeCompliance{err: tt.err}, nil)
			rec := serve(s, uploadRequest(t, "msa.txt", []byte("text")))

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, float64(tt.status), body["status"])
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body["detail"])
			}
		})
	}
}

func TestWantsJSON(t *testing.T) {
	assert.True(t, wantsJSON("application/json"))
	assert.True(t, wantsJSON("text/html, application/json;q=0.9"))
	assert.False(t, wantsJSON("text/csv, application/json"))
	assert.False(t, wantsJSON(""))
	assert.False(t, wantsJSON("*/*"))
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("clausecheck_runs_total 1\n"))
	})
	s := newTestServer(t, &fakeCompliance{}, metrics)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clausecheck_runs_total")

	noMetrics := newTestServer(t, &fakeCompliance{}, nil)
	rec = serve(noMetrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &fakeCompliance{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := serve(s, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = serve(s, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, &fakeCompliance{}, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
