package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

func setupTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s := store.New(0)
	return New(s, 6), s
}

func doRequest(t *testing.T, srv *Server, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", data, err)
	}
	return resp.StatusCode, out
}

func TestEvaluateSuccess(t *testing.T) {
	srv, _ := setupTestServer(t)

	status, body := doRequest(t, srv, "POST", "/v1/evaluate", `{"expression": "(3*(1+2))/2"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	if body["result"] != 4.5 {
		t.Errorf("got result %v", body["result"])
	}
	if body["formatted"] != "4.5" {
		t.Errorf("got formatted %v", body["formatted"])
	}
	if body["postfix"] != "3 1 2 + * 2 /" {
		t.Errorf("got postfix %v", body["postfix"])
	}
	if body["state"] != "SUCCEEDED" {
		t.Errorf("got state %v", body["state"])
	}
}

func TestEvaluateMalformed(t *testing.T) {
	srv, _ := setupTestServer(t)

	status, body := doRequest(t, srv, "POST", "/v1/evaluate", `{"expression": "2(3)"}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d", status)
	}
	errMap, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	if errMap["kind"] != "MalformedExpression" {
		t.Errorf("got kind %v", errMap["kind"])
	}
	if errMap["message"] != "unexpected symbol: 1" {
		t.Errorf("got message %v", errMap["message"])
	}
	if errMap["position"] != float64(1) {
		t.Errorf("got position %v", errMap["position"])
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	srv, _ := setupTestServer(t)

	status, body := doRequest(t, srv, "POST", "/v1/evaluate", `{"expression": "1/0"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["formatted"] != "inf" {
		t.Errorf("got formatted %v", body["formatted"])
	}
	if _, ok := body["result"]; ok {
		t.Error("expected no numeric result for inf")
	}
}

func TestEvaluateInvalidBody(t *testing.T) {
	srv, _ := setupTestServer(t)

	status, _ := doRequest(t, srv, "POST", "/v1/evaluate", `{"expression":`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestGetAndListEvaluations(t *testing.T) {
	srv, s := setupTestServer(t)
	s.Evaluate("1+1", "test")
	s.Evaluate("2+", "test")

	status, body := doRequest(t, srv, "GET", "/v1/evaluations/eval-1", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["result"] != float64(2) {
		t.Errorf("got result %v", body["result"])
	}

	status, body = doRequest(t, srv, "GET", "/v1/evaluations", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	items, ok := body["evaluations"].([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 evaluations, got %v", body["evaluations"])
	}
	first := items[0].(map[string]interface{})
	if first["id"] != "eval-2" || first["state"] != "FAILED" {
		t.Errorf("unexpected first item %v", first)
	}

	status, _ = doRequest(t, srv, "GET", "/v1/evaluations/eval-99", "")
	if status != 404 {
		t.Errorf("expected 404, got %d", status)
	}
}

func TestClearEvaluations(t *testing.T) {
	srv, s := setupTestServer(t)
	s.Evaluate("1", "test")

	status, body := doRequest(t, srv, "DELETE", "/v1/evaluations", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["deleted"] != float64(1) {
		t.Errorf("got deleted %v", body["deleted"])
	}
	if n := len(s.ListEvaluations()); n != 0 {
		t.Errorf("got %d evaluations after clear", n)
	}
}
