package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatshot/internal/api"
	"chatshot/internal/classifier"
	"chatshot/internal/config"
	"chatshot/internal/label"
	"chatshot/internal/preflight"
	"chatshot/internal/services"
	"chatshot/internal/testsupport"
)

type pipelineStub struct {
	result classifier.Result
	err    error

	gotData      []byte
	gotRequestID string
	gotDeadline  bool
}

func (p *pipelineStub) Classify(ctx context.Context, data []byte) (classifier.Result, error) {
	p.gotData = data
	p.gotRequestID, _ = services.RequestIDFromContext(ctx)
	_, p.gotDeadline = ctx.Deadline()
	return p.result, p.err
}

func (p *pipelineStub) Mode() string { return config.ModeOCR }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Server.MaxUploadMB = 1
	return cfg
}

func newTestHandler(t *testing.T, cfg *config.Config, stub *pipelineStub) http.Handler {
	t.Helper()
	d, err := New(cfg, stub, nil, WithStatusFunc(func(_ context.Context, includeLLM bool) []preflight.Result {
		results := []preflight.Result{{Name: "Prompt templates", Passed: true}}
		if includeLLM {
			results = append(results, preflight.Result{Name: "LLM (openai)", Detail: "http 401"})
		}
		return results
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d.Handler()
}

func decodeClassify(t *testing.T, body *bytes.Buffer) api.ClassifyResponse {
	t.Helper()
	var resp api.ClassifyResponse
	if err := json.Unmarshal(body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, body.String())
	}
	return resp
}

func TestHandleClassifyMultipart(t *testing.T) {
	stub := &pipelineStub{result: classifier.Result{
		Label:      label.Chat,
		Classified: true,
		Text:       "hi there",
		Duration:   250 * time.Millisecond,
	}}
	handler := newTestHandler(t, testConfig(t), stub)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "shot.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("image-bytes"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/classify", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-ID", "client-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if string(stub.gotData) != "image-bytes" {
		t.Fatalf("unexpected upload %q", stub.gotData)
	}
	if stub.gotRequestID != "client-id" || w.Header().Get("X-Request-ID") != "client-id" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", stub.gotRequestID, w.Header().Get("X-Request-ID"))
	}
	if !stub.gotDeadline {
		t.Fatal("expected request timeout on context")
	}
	resp := decodeClassify(t, w.Body)
	if resp.RequestID != "client-id" || resp.Label != "CHAT" || !resp.IsChat || !resp.Classified {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.ProcessingMS != 250 || resp.TextLength != 8 {
		t.Fatalf("unexpected timing/text length %+v", resp)
	}
}

func TestHandleClassifyRawBodyGeneratesRequestID(t *testing.T) {
	stub := &pipelineStub{result: classifier.Result{Label: label.NotChat, Classified: true}}
	handler := newTestHandler(t, testConfig(t), stub)

	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader("raw"))
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if string(stub.gotData) != "raw" {
		t.Fatalf("unexpected upload %q", stub.gotData)
	}
	resp := decodeClassify(t, w.Body)
	if len(resp.RequestID) != 36 || resp.RequestID != stub.gotRequestID {
		t.Fatalf("expected generated uuid request id, got %q (ctx %q)", resp.RequestID, stub.gotRequestID)
	}
	if resp.Label != "NOT_CHAT" || resp.IsChat {
		t.Fatalf("unexpected verdict %+v", resp)
	}
}

func TestHandleClassifyMapsPipelineErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"external", services.Wrap(services.ErrExternalService, "llm", "complete", "request failed", errors.New("boom")), http.StatusBadGateway},
		{"validation", services.Wrap(services.ErrValidation, "upload", "decode", "empty upload", nil), http.StatusBadRequest},
		{"unsupported", services.Wrap(services.ErrUnsupported, "upload", "decode", "gif", nil), http.StatusUnsupportedMediaType},
		{"timeout", services.Wrap(services.ErrTimeout, "ocr", "recognize", "deadline", nil), http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &pipelineStub{result: classifier.Result{FailedStage: "llm"}, err: tc.err}
			handler := newTestHandler(t, testConfig(t), stub)

			req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader("x"))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			resp := decodeClassify(t, w.Body)
			if resp.Classified || resp.Error == "" {
				t.Fatalf("expected unclassified error payload, got %+v", resp)
			}
		})
	}
}

func TestHandleClassifyRejectsOversizeBody(t *testing.T) {
	stub := &pipelineStub{}
	handler := newTestHandler(t, testConfig(t), stub)

	req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewReader(make([]byte, 3<<20)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if stub.gotData != nil {
		t.Fatal("pipeline must not run for oversize uploads")
	}
}

func TestHandleClassifyMissingMultipartField(t *testing.T) {
	handler := newTestHandler(t, testConfig(t), &pipelineStub{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("other", "value")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/classify", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleClassifyMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, testConfig(t), &pipelineStub{})
	req := httptest.NewRequest(http.MethodGet, "/api/classify", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	handler := newTestHandler(t, testConfig(t), &pipelineStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	var status api.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Ready || status.Mode != config.ModeOCR || len(status.Checks) != 1 {
		t.Fatalf("unexpected status %+v", status)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status?llm=1", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Ready || len(status.Checks) != 2 {
		t.Fatalf("expected failing llm check, got %+v", status)
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.APIToken = "secret"
	handler := newTestHandler(t, cfg, &pipelineStub{result: classifier.Result{Classified: true}})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader("x"))
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected healthz without auth, got %d", w.Code)
	}
}
