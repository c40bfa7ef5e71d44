package access_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/bootstrap"
	"docshare-backend/internal/shared/config"
	"docshare-backend/internal/users"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := bootstrap.Build(config.Config{
		Port:            "0",
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		ShareBaseURL:    "https://docs.example.com",
	})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestApp(t).Router
}

func createDocument(t *testing.T, router http.Handler, guestID, title string) string {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("title", title); err != nil {
		t.Fatalf("write title: %v", err)
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
		t.Fatalf("create document: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return created.DocumentID
}

func issueShareLink(t *testing.T, router http.Handler, guestID, docID string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/share-link", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("share-link: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		ShareLink string `json:"shareLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode share-link response: %v", err)
	}
	if out.ShareLink == "" {
		t.Fatalf("expected a share link")
	}
	return out.ShareLink
}

func TestShareLinkFlowGrantsDurableAccess(t *testing.T) {
	router := newTestRouter(t)

	docID := createDocument(t, router, "owner", "Roadmap")
	link := issueShareLink(t, router, "owner", docID)

	// A second issue returns the same link.
	if again := issueShareLink(t, router, "owner", docID); again != link {
		t.Fatalf("expected stable share link, got %q then %q", link, again)
	}

	// Visitor opens the link.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/shared/"+link, nil)
	req.Header.Set("X-Guest-Id", "visitor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var resolved struct {
		Document struct {
			DocumentID string `json:"documentId"`
			IsOwner    bool   `json:"isOwner"`
		} `json:"document"`
		Comments []any `json:"comments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&resolved); err != nil {
		t.Fatalf("decode resolve response: %v", err)
	}
	if resolved.Document.DocumentID != docID {
		t.Fatalf("expected document %s, got %s", docID, resolved.Document.DocumentID)
	}
	if resolved.Document.IsOwner {
		t.Fatalf("visitor must not be owner")
	}

	// The visit granted durable access: a plain read now succeeds.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID, nil)
	reqGet.Header.Set("X-Guest-Id", "visitor")
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected durable access after link open, got %d", respGet.Code)
	}
}

func TestRevokeBlocksShareLinkReentry(t *testing.T) {
	router := newTestRouter(t)

	docID := createDocument(t, router, "owner", "Roadmap")
	link := issueShareLink(t, router, "owner", docID)

	// Visitor opens the link once.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/shared/"+link, nil)
	req.Header.Set("X-Guest-Id", "visitor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d", resp.Code)
	}

	// Owner revokes.
	payload := bytes.NewBufferString(`{"userId":"guest:visitor"}`)
	reqRevoke := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/access/revoke", payload)
	reqRevoke.Header.Set("Content-Type", "application/json")
	reqRevoke.Header.Set("X-Guest-Id", "owner")
	respRevoke := httptest.NewRecorder()
	router.ServeHTTP(respRevoke, reqRevoke)
	if respRevoke.Code != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d: %s", respRevoke.Code, respRevoke.Body.String())
	}

	// The link no longer re-admits the visitor.
	reqAgain := httptest.NewRequest(http.MethodGet, "/api/v1/documents/shared/"+link, nil)
	reqAgain.Header.Set("X-Guest-Id", "visitor")
	respAgain := httptest.NewRecorder()
	router.ServeHTTP(respAgain, reqAgain)
	if respAgain.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after revocation, got %d", respAgain.Code)
	}

	// And neither does a plain read.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID, nil)
	reqGet.Header.Set("X-Guest-Id", "visitor")
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusForbidden {
		t.Fatalf("expected 403 plain read after revocation, got %d", respGet.Code)
	}
}

func TestGrantReinstatesRevokedUser(t *testing.T) {
	router := newTestRouter(t)

	docID := createDocument(t, router, "owner", "Launch Plan")

	revoke := bytes.NewBufferString(`{"userId":"guest:visitor"}`)
	reqRevoke := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/access/revoke", revoke)
	reqRevoke.Header.Set("Content-Type", "application/json")
	reqRevoke.Header.Set("X-Guest-Id", "owner")
	respRevoke := httptest.NewRecorder()
	router.ServeHTTP(respRevoke, reqRevoke)
	if respRevoke.Code != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d", respRevoke.Code)
	}

	grant := bytes.NewBufferString(`{"userId":"guest:visitor"}`)
	reqGrant := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/access/grant", grant)
	reqGrant.Header.Set("Content-Type", "application/json")
	reqGrant.Header.Set("X-Guest-Id", "owner")
	respGrant := httptest.NewRecorder()
	router.ServeHTTP(respGrant, reqGrant)
	if respGrant.Code != http.StatusOK {
		t.Fatalf("grant: expected 200, got %d: %s", respGrant.Code, respGrant.Body.String())
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+docID, nil)
	reqGet.Header.Set("X-Guest-Id", "visitor")
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected access after reinstatement, got %d", respGet.Code)
	}
}

func TestGrantMailFailureReturnsInternalError(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	ctx := context.Background()
	if err := app.UsersRepo.Upsert(ctx, users.User{ID: "bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	app.Invitations.Mailer = &recordingMailer{err: errors.New("smtp down")}

	docID := createDocument(t, router, "owner", "Roadmap")

	grant := bytes.NewBufferString(`{"userId":"bob"}`)
	reqGrant := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/access/grant", grant)
	reqGrant.Header.Set("Content-Type", "application/json")
	reqGrant.Header.Set("X-Guest-Id", "owner")
	respGrant := httptest.NewRecorder()
	router.ServeHTTP(respGrant, reqGrant)
	if respGrant.Code != http.StatusInternalServerError {
		t.Fatalf("grant with failing mail: expected 500, got %d: %s", respGrant.Code, respGrant.Body.String())
	}
	var failure struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(respGrant.Body).Decode(&failure); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if failure.Error.Code != "internal_error" {
		t.Fatalf("expected internal_error, got %q", failure.Error.Code)
	}

	// The grant row was committed before the send was attempted.
	if _, ok, err := app.AccessRepo.GetGrant(ctx, docID, "bob"); err != nil || !ok {
		t.Fatalf("expected grant to persist past mail failure, ok=%v err=%v", ok, err)
	}

	// A retry reports the share as already standing and does not mail.
	retry := bytes.NewBufferString(`{"userId":"bob"}`)
	reqRetry := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/access/grant", retry)
	reqRetry.Header.Set("Content-Type", "application/json")
	reqRetry.Header.Set("X-Guest-Id", "owner")
	respRetry := httptest.NewRecorder()
	router.ServeHTTP(respRetry, reqRetry)
	if respRetry.Code != http.StatusOK {
		t.Fatalf("retry: expected 200, got %d: %s", respRetry.Code, respRetry.Body.String())
	}
	var retried struct {
		AlreadyShared  bool `json:"alreadyShared"`
		EmailDelivered bool `json:"emailDelivered"`
	}
	if err := json.NewDecoder(respRetry.Body).Decode(&retried); err != nil {
		t.Fatalf("decode retry response: %v", err)
	}
	if !retried.AlreadyShared {
		t.Fatalf("expected alreadyShared on retry")
	}
	if retried.EmailDelivered {
		t.Fatalf("retry must not report a delivered email")
	}
}

func TestGrantWithoutMailerReportsEmailNotDelivered(t *testing.T) {
	router := newTestRouter(t)

	docID := createDocument(t, router, "owner", "Roadmap")

	grant := bytes.NewBufferString(`{"userId":"guest:visitor"}`)
	reqGrant := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/access/grant", grant)
	reqGrant.Header.Set("Content-Type", "application/json")
	reqGrant.Header.Set("X-Guest-Id", "owner")
	respGrant := httptest.NewRecorder()
	router.ServeHTTP(respGrant, reqGrant)
	if respGrant.Code != http.StatusOK {
		t.Fatalf("grant: expected 200, got %d: %s", respGrant.Code, respGrant.Body.String())
	}

	var granted struct {
		AlreadyShared  bool `json:"alreadyShared"`
		EmailDelivered bool `json:"emailDelivered"`
	}
	if err := json.NewDecoder(respGrant.Body).Decode(&granted); err != nil {
		t.Fatalf("decode grant response: %v", err)
	}
	if granted.AlreadyShared {
		t.Fatalf("first grant must not report alreadyShared")
	}
	if granted.EmailDelivered {
		t.Fatalf("no mailer is configured, emailDelivered must be false")
	}
}

func TestResolveUnknownLinkNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/shared/nonsense", nil)
	req.Header.Set("X-Guest-Id", "visitor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.Code, resp.Body.String())
	}
}
