package optd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/pareto"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/sim"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
)

const daemonProblemYAML = `
design: plate.dsn
variables:
  - name: x
    component: plate
    property: x
    lower_bound: 0
    upper_bound: 1
  - name: y
    component: plate
    property: y
    lower_bound: 0
    upper_bound: 1
objectives:
  - name: total
    series: total
    extraction: final
    direction: maximize
`

func daemonFactory(delay time.Duration) sim.EvaluatorFactory {
	return func() (sim.Evaluator, error) {
		return sim.NewFuncEvaluator(map[string]func(x []float64) []float64{
			"total": func(x []float64) []float64 {
				if delay > 0 {
					time.Sleep(delay)
				}
				return []float64{x[0] + x[1]}
			},
		}), nil
	}
}

func daemonOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.SampleCount = 10
	opts.Search = pareto.DefaultParams()
	opts.Search.PopulationSize = 16
	opts.Search.Generations = 10
	return opts
}

func newTestServer(t *testing.T, delay time.Duration) (*HTTPServer, *RunExecutor) {
	t.Helper()
	store := NewRunStore()
	executor := NewRunExecutor(store, daemonFactory(delay), daemonOptions())
	return NewHTTPServer(store, executor), executor
}

func doRequest(t *testing.T, s *HTTPServer, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func createRun(t *testing.T, s *HTTPServer) string {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/v1/runs", "application/x-yaml", daemonProblemYAML)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Run RunRecord `json:"run"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if resp.Run.ID == "" {
		t.Fatal("created run has no ID")
	}
	if resp.Run.Status != StatusPending {
		t.Fatalf("created run status = %q", resp.Run.Status)
	}
	return resp.Run.ID
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec := doRequest(t, s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}
}

func TestCreateRunValidation(t *testing.T) {
	s, _ := newTestServer(t, 0)

	rec := doRequest(t, s, http.MethodPost, "/v1/runs", "application/x-yaml", "objectives: []")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid problem returned %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/v1/runs", "application/json", `{"problem": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty problem returned %d", rec.Code)
	}
}

func TestCreateRunDuplicateID(t *testing.T) {
	s, _ := newTestServer(t, 0)
	body, _ := json.Marshal(map[string]string{
		"run_id":  "run-dup",
		"problem": daemonProblemYAML,
	})
	rec := doRequest(t, s, http.MethodPost, "/v1/runs", "application/json", string(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, s, http.MethodPost, "/v1/runs", "application/json", string(body))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create returned %d", rec.Code)
	}
}

func TestRunLifecycle(t *testing.T) {
	s, executor := newTestServer(t, 0)
	runID := createRun(t, s)

	if rec := doRequest(t, s, http.MethodGet, "/v1/runs/"+runID+"/results", "", ""); rec.Code != http.StatusPreconditionFailed {
		t.Errorf("results before start returned %d", rec.Code)
	}

	if rec := doRequest(t, s, http.MethodPost, "/v1/runs/"+runID+":start", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("start returned %d: %s", rec.Code, rec.Body.String())
	}
	executor.Wait()

	rec := doRequest(t, s, http.MethodGet, "/v1/runs/"+runID, "", "")
	var resp struct {
		Run RunRecord `json:"run"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding get response: %v", err)
	}
	if resp.Run.Status != StatusCompleted {
		t.Fatalf("run status = %q, error = %q", resp.Run.Status, resp.Run.Error)
	}
	if resp.Run.EndedAtUnixMs == 0 {
		t.Error("completed run has no end time")
	}

	rec = doRequest(t, s, http.MethodGet, "/v1/runs/"+runID+"/results", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("results returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "candidates") {
		t.Error("results payload missing candidates")
	}

	rec = doRequest(t, s, http.MethodGet, "/v1/runs/"+runID+"/report", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Optimization Report") {
		t.Error("report missing title")
	}

	// A terminal run cannot be restarted.
	if rec := doRequest(t, s, http.MethodPost, "/v1/runs/"+runID+":start", "", ""); rec.Code != http.StatusConflict {
		t.Errorf("restart of terminal run returned %d", rec.Code)
	}
}

func TestStopRun(t *testing.T) {
	s, executor := newTestServer(t, 20*time.Millisecond)
	runID := createRun(t, s)

	if rec := doRequest(t, s, http.MethodPost, "/v1/runs/"+runID+":start", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("start returned %d", rec.Code)
	}
	time.Sleep(30 * time.Millisecond)
	if rec := doRequest(t, s, http.MethodPost, "/v1/runs/"+runID+":stop", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("stop returned %d: %s", rec.Code, rec.Body.String())
	}
	executor.Wait()

	rec, ok := s.store.Get(runID)
	if !ok {
		t.Fatal("run disappeared")
	}
	if rec.Status != StatusCancelled {
		t.Errorf("status after stop = %q", rec.Status)
	}
}

func TestStopUnknownRun(t *testing.T) {
	s, _ := newTestServer(t, 0)
	if rec := doRequest(t, s, http.MethodPost, "/v1/runs/nope:stop", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("stop of unknown run returned %d", rec.Code)
	}
}

func TestListRuns(t *testing.T) {
	s, _ := newTestServer(t, 0)
	createRun(t, s)
	createRun(t, s)

	rec := doRequest(t, s, http.MethodGet, "/v1/runs", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var resp struct {
		Runs  []RunRecord `json:"runs"`
		Count int         `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if resp.Count != 2 || len(resp.Runs) != 2 {
		t.Errorf("list count = %d, runs = %d", resp.Count, len(resp.Runs))
	}
}

func TestRunStoreStatusTransitions(t *testing.T) {
	store := NewRunStore()
	problem, err := config.ParseProblemYAMLString(daemonProblemYAML)
	if err != nil {
		t.Fatalf("parsing problem: %v", err)
	}

	rec, err := store.Create("", problem)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rec.ID == "" {
		t.Error("empty run ID was not generated")
	}

	updated, err := store.SetStatus(rec.ID, StatusRunning, "")
	if err != nil {
		t.Fatalf("set running failed: %v", err)
	}
	if updated.StartedAtUnixMs == 0 {
		t.Error("running run has no start time")
	}

	if _, err := store.SetStatus("missing", StatusFailed, "boom"); err == nil {
		t.Error("expected error for unknown run")
	}
}
