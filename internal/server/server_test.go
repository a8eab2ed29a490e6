package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/discovery"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/scoring"
	"github.com/Veraticus/claims-triage/internal/testutil"
)

const report = `Claim #,State,Status,Age,Net Paid,Charges,Provider,Notes,Edit
C-1,PEND,OPEN,10,100,1000,Dr A,,E100
C-2,PAID,PAID,5,50,500,Dr B,,
C-3,ONHOLD,DENY,3,0,200,Dr C,urgent review,E999
`

func setup(t *testing.T) (*Server, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t, testutil.NewBuilder().WithStandardTaxonomy())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db.Storage, analysis.New(scoring.DefaultWeights(), logger), logger), db
}

func do(t *testing.T, s *Server, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func uploadCSV(t *testing.T, s *Server, path, name, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[map[string]string](t, resp)["error"]
}

func TestHealthAndRequestID(t *testing.T) {
	s, _ := setup(t)

	resp := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp2, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "abc-123", resp2.Header.Get(requestIDHeader))
}

func TestTeams(t *testing.T) {
	s, db := setup(t)

	resp := do(t, s, http.MethodPost, "/api/teams", map[string]string{"team_name": "Recovery"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	team := decode[model.Team](t, resp)
	assert.Equal(t, "Recovery", team.Name)

	resp = do(t, s, http.MethodGet, "/api/teams", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Team](t, resp), 4)

	resp = do(t, s, http.MethodPost, "/api/teams", map[string]string{"team_name": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorMessage(t, resp), "at least 2 characters")

	resp = do(t, s, http.MethodPost, "/api/teams", map[string]string{"team_name": "Recovery"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, s, http.MethodDelete, "/api/teams/"+strconv.Itoa(team.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, s, http.MethodDelete, "/api/teams/"+strconv.Itoa(team.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, s, http.MethodDelete, "/api/teams/"+strconv.Itoa(db.Seed.Teams[testutil.TeamBilling]), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, s, http.MethodDelete, "/api/teams/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategories(t *testing.T) {
	s, db := setup(t)

	resp := do(t, s, http.MethodPost, "/api/categories", map[string]any{
		"category_name":      "Recoupment",
		"team_id":            db.Seed.Teams[testutil.TeamBilling],
		"send_to_l1_monitor": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	category := decode[model.Category](t, resp)
	assert.Equal(t, testutil.TeamBilling, category.TeamName)
	assert.True(t, category.SendToL1Monitor)

	resp = do(t, s, http.MethodPost, "/api/categories", map[string]any{"category_name": "Orphan", "team_id": 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, s, http.MethodGet, "/api/categories", nil)
	assert.Len(t, decode[[]model.Category](t, resp), 5)

	resp = do(t, s, http.MethodDelete, "/api/categories/"+strconv.Itoa(category.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestConfigs(t *testing.T) {
	s, db := setup(t)

	resp := do(t, s, http.MethodPost, "/api/configs", map[string]any{
		"config_name":     "Globex",
		"column_mappings": map[string]string{model.FieldClaimID: "ID"},
		"team_ids":        []int{db.Seed.Teams[testutil.TeamHolds]},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cfg := decode[model.ClientConfig](t, resp)
	assert.Equal(t, []int{db.Seed.Teams[testutil.TeamHolds]}, cfg.TeamIDs)

	path := "/api/configs/" + strconv.Itoa(cfg.ID)

	resp = do(t, s, http.MethodPut, path, map[string]any{
		"config_name":     "Globex Corp",
		"column_mappings": map[string]string{model.FieldClaimID: "Claim"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.ClientConfig](t, resp)
	assert.Equal(t, "Globex Corp", updated.Name)
	assert.Equal(t, "Claim", updated.Mapping[model.FieldClaimID])

	resp = do(t, s, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{db.Seed.Teams[testutil.TeamHolds]}, decode[model.ClientConfig](t, resp).TeamIDs)

	resp = do(t, s, http.MethodGet, "/api/configs", nil)
	assert.Len(t, decode[[]model.ClientConfig](t, resp), 2)

	resp = do(t, s, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, s, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, errorMessage(t, resp))
}

func TestRules(t *testing.T) {
	s, db := setup(t)
	client := strconv.Itoa(db.MustClient(testutil.ClientAcme))
	path := "/api/configs/" + client + "/rules/edit"

	resp := do(t, s, http.MethodPost, path, []map[string]any{
		{"text": "E200", "category_id": db.MustCategory(testutil.CategoryOnHold)},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Rule](t, resp), 2)

	resp = do(t, s, http.MethodDelete, path+"?text=E200", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, s, http.MethodDelete, path+"?text=E200", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, s, http.MethodGet, path, nil)
	rules := decode[[]model.Rule](t, resp)
	require.Len(t, rules, 1)
	assert.Equal(t, "E100", rules[0].Text)

	resp = do(t, s, http.MethodGet, "/api/configs/"+client+"/rules/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, s, http.MethodPost, path, []map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, s, http.MethodGet, "/api/rules", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[model.RuleSet](t, resp)
	assert.Len(t, all.EditRules, 1)
	assert.Len(t, all.NoteRules, 3)
}

func TestAnalyze(t *testing.T) {
	s, db := setup(t)
	path := "/api/configs/" + strconv.Itoa(db.MustClient(testutil.ClientAcme)) + "/analyze"

	resp := uploadCSV(t, s, path, "report.csv", report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[AnalyzeResponse](t, resp)

	assert.Equal(t, 3, out.Summary.Metrics.TotalClaims)
	assert.Equal(t, 2, out.Summary.Actionable)
	assert.NotEmpty(t, out.Summary.RunID)
	require.Len(t, out.Queue, 2)

	byID := map[string]model.ProcessedClaim{}
	for _, c := range out.Queue {
		byID[c.ClaimID] = c
	}
	assert.Equal(t, testutil.CategoryBillingError, byID["C-1"].Category)
	assert.Equal(t, model.SourceEditRule, byID["C-1"].CategorySource)
	assert.Equal(t, testutil.CategoryEscalation, byID["C-3"].Category)
	assert.Equal(t, model.SourceNoteRule, byID["C-3"].CategorySource)

	resp = uploadCSV(t, s, path+"?category="+strings.ReplaceAll(testutil.CategoryEscalation, " ", "%20")+"&limit=5", "report.csv", report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[AnalyzeResponse](t, resp)
	require.Len(t, out.Queue, 1)
	assert.Equal(t, "C-3", out.Queue[0].ClaimID)
}

func TestAnalyze_Errors(t *testing.T) {
	s, db := setup(t)
	path := "/api/configs/" + strconv.Itoa(db.MustClient(testutil.ClientAcme)) + "/analyze"

	resp := uploadCSV(t, s, path, "report.pdf", report)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = uploadCSV(t, s, path+"?sort=bogus", "report.csv", report)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = uploadCSV(t, s, "/api/configs/999/analyze", "report.csv", report)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, s, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorMessage(t, resp), "file")
}

func TestDiscover(t *testing.T) {
	s, db := setup(t)
	path := "/api/configs/" + strconv.Itoa(db.MustClient(testutil.ClientAcme)) + "/discover"

	resp := uploadCSV(t, s, path, "report.csv", report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[discovery.Result](t, resp)
	assert.Equal(t, []model.UncategorizedItem{{Text: "E999"}}, found.Edits)
	assert.Equal(t, []model.UncategorizedItem{{Text: "urgent review"}}, found.Notes)
}

func TestDiscover_RequiresMapping(t *testing.T) {
	s, _ := setup(t)

	resp := do(t, s, http.MethodPost, "/api/configs", map[string]any{
		"config_name":     "Partial",
		"column_mappings": map[string]string{model.FieldEdit: "Edit"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cfg := decode[model.ClientConfig](t, resp)

	resp = uploadCSV(t, s, "/api/configs/"+strconv.Itoa(cfg.ID)+"/discover", "report.csv", report)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorMessage(t, resp), "edit")
}
