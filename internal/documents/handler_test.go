package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/bootstrap"
	"docshare-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func uploadDocument(t *testing.T, router http.Handler, guestID, title string) string {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("title", title); err != nil {
		t.Fatalf("write title: %v", err)
	}
	fileWriter, err := writer.CreateFormFile("file", "hello.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("hello world")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatalf("expected documentId, got empty")
	}
	return created.DocumentID
}

func TestDocumentsUploadAndFetch(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	docID := uploadDocument(t, router, "owner", "Quarterly Report")

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID, nil)
	reqGet.Header.Set("X-Guest-Id", "owner")
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respGet.Code, respGet.Body.String())
	}

	var fetched struct {
		DocumentID string `json:"documentId"`
		Title      string `json:"title"`
		IsOwner    bool   `json:"isOwner"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if fetched.Title != "Quarterly Report" {
		t.Fatalf("expected title Quarterly Report, got %s", fetched.Title)
	}
	if !fetched.IsOwner {
		t.Fatalf("expected isOwner=true for uploader")
	}
}

func TestDocumentsFetchDeniedForStranger(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	docID := uploadDocument(t, router, "owner", "Private Notes")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID, nil)
	req.Header.Set("X-Guest-Id", "stranger")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDocumentsArchiveHidesFromListing(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	docID := uploadDocument(t, router, "owner", "Old Draft")

	reqArchive := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/archive", nil)
	reqArchive.Header.Set("X-Guest-Id", "owner")
	respArchive := httptest.NewRecorder()
	router.ServeHTTP(respArchive, reqArchive)
	if respArchive.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respArchive.Code, respArchive.Body.String())
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	reqList.Header.Set("X-Guest-Id", "owner")
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respList.Code)
	}

	var listed []struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	for _, item := range listed {
		if item.DocumentID == docID {
			t.Fatalf("archived document should not appear in listing")
		}
	}
}

func TestDocumentsDownloadRoundTrip(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	docID := uploadDocument(t, router, "owner", "Readme")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID+"/file", nil)
	req.Header.Set("X-Guest-Id", "owner")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Body.String() != "hello world" {
		t.Fatalf("unexpected file body: %q", resp.Body.String())
	}
}

func TestDocumentsDeleteRemovesDocument(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	docID := uploadDocument(t, router, "owner", "Scratch")

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+docID, nil)
	reqDel.Header.Set("X-Guest-Id", "owner")
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)
	if respDel.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respDel.Code, respDel.Body.String())
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID, nil)
	reqGet.Header.Set("X-Guest-Id", "owner")
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", respGet.Code)
	}
}
