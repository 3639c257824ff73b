package catalog

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"animehub/internal/auth"
	"animehub/internal/testinfra"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testinfra.NewSQLite(t)

	authSvc := auth.NewService(auth.NewRepo(db), auth.TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "animehub-test",
		Duration: time.Hour,
	})
	authSvc.Cost = bcrypt.MinCost

	r := gin.New()
	auth.NewHandler(authSvc).RegisterRoutes(r)
	protected := r.Group("/", auth.AuthMiddleware(authSvc))
	NewHandler(NewService(db, nil)).RegisterRoutes(protected)
	return r
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	creds := `{"username":"alice","password":"pw123"}`
	if w := do(r, http.MethodPost, "/register", creds, ""); w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w := do(r, http.MethodPost, "/login", creds, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(t, w, &out)
	return out.Token
}

type animeResp struct {
	ID         uint    `json:"id"`
	Title      string  `json:"title"`
	Rating     float64 `json:"rating"`
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
}

const narutoBody = `{"title":"Naruto","rating":8.3,"reviews":1200,"seasons":5,"type":"TV","poster":"https://img.example/n.jpg","categories":["Action"]}`

func TestCatalogScenario(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r)

	if w := do(r, http.MethodPost, "/category", `{"name":"Action"}`, token); w.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", w.Code, w.Body.String())
	}

	w := do(r, http.MethodPost, "/anime", narutoBody, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create anime: %d %s", w.Code, w.Body.String())
	}
	var created animeResp
	decode(t, w, &created)
	if created.Title != "Naruto" || len(created.Categories) != 1 || created.Categories[0].Name != "Action" {
		t.Fatalf("created = %+v", created)
	}

	w = do(r, http.MethodGet, "/anime", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list struct {
		Animes []animeResp `json:"animes"`
	}
	decode(t, w, &list)
	if len(list.Animes) != 1 || list.Animes[0].Title != "Naruto" {
		t.Fatalf("list = %+v", list)
	}

	w = do(r, http.MethodGet, "/anime?q=naru&category=Action", "", token)
	decode(t, w, &list)
	if len(list.Animes) != 1 {
		t.Fatalf("filtered list = %+v", list)
	}
	w = do(r, http.MethodGet, "/anime?category=Drama", "", token)
	list.Animes = nil
	decode(t, w, &list)
	if len(list.Animes) != 0 {
		t.Fatalf("unmatched filter = %+v", list)
	}

	bad := strings.Replace(narutoBody, `"Naruto"`, `"Bleach"`, 1)
	bad = strings.Replace(bad, `["Action"]`, `["Unknown"]`, 1)
	w = do(r, http.MethodPost, "/anime", bad, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown category: %d %s", w.Code, w.Body.String())
	}
	var msg struct {
		Message string `json:"message"`
	}
	decode(t, w, &msg)
	if msg.Message != "Category Unknown not found" {
		t.Fatalf("message = %q", msg.Message)
	}

	if w := do(r, http.MethodPost, "/anime", narutoBody, token); w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate title: %d", w.Code)
	}

	w = do(r, http.MethodPatch, fmt.Sprintf("/anime/%d", created.ID), `{"rating":0}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}
	var patched animeResp
	decode(t, w, &patched)
	if patched.Rating != 0 || patched.Title != "Naruto" {
		t.Fatalf("patched = %+v", patched)
	}

	if w := do(r, http.MethodDelete, fmt.Sprintf("/anime/%d", created.ID), "", token); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := do(r, http.MethodGet, fmt.Sprintf("/anime/%d", created.ID), "", token); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", w.Code)
	}
	if w := do(r, http.MethodDelete, fmt.Sprintf("/anime/%d", created.ID), "", token); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", w.Code)
	}
}

func TestCatalogRequiresToken(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/anime", "/category", "/anime/1", "/category/1"} {
		if w := do(r, http.MethodGet, path, "", ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: %d", path, w.Code)
		}
	}
	if w := do(r, http.MethodGet, "/anime", "", "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", w.Code)
	}
}

func TestCatalogRequestValidation(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r)
	if w := do(r, http.MethodPost, "/category", `{"name":"Action"}`, token); w.Code != http.StatusCreated {
		t.Fatalf("create category: %d", w.Code)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing rating", http.MethodPost, "/anime", `{"title":"A","reviews":1,"seasons":1,"type":"TV","poster":"p","categories":["Action"]}`, http.StatusBadRequest},
		{"empty categories", http.MethodPost, "/anime", `{"title":"A","rating":1,"reviews":1,"seasons":1,"type":"TV","poster":"p","categories":[]}`, http.StatusBadRequest},
		{"wrong type", http.MethodPost, "/anime", `{"title":"A","rating":"high","reviews":1,"seasons":1,"type":"TV","poster":"p","categories":["Action"]}`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/category", ``, http.StatusBadRequest},
		{"non-integer id", http.MethodGet, "/anime/abc", ``, http.StatusBadRequest},
		{"unknown anime", http.MethodGet, "/anime/42", ``, http.StatusNotFound},
		{"zero rating accepted", http.MethodPost, "/anime", `{"title":"Z","rating":0,"reviews":0,"seasons":0,"type":"TV","poster":"","categories":["Action"]}`, http.StatusCreated},
		{"duplicate category", http.MethodPost, "/category", `{"name":"Action"}`, http.StatusBadRequest},
		{"replace unknown category id", http.MethodPut, "/category/99", `{"name":"X"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body, token)
			if w.Code != tt.want {
				t.Fatalf("%s %s = %d %s, want %d", tt.method, tt.path, w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestCategoryRoutes(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r)

	w := do(r, http.MethodPost, "/category", `{"name":"Action"}`, token)
	var cat struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	decode(t, w, &cat)
	path := fmt.Sprintf("/category/%d", cat.ID)

	if w := do(r, http.MethodPatch, path, `{}`, token); w.Code != http.StatusOK {
		t.Fatalf("empty patch: %d", w.Code)
	}
	w = do(r, http.MethodPatch, path, `{"name":"Shounen"}`, token)
	decode(t, w, &cat)
	if cat.Name != "Shounen" {
		t.Fatalf("patched name = %q", cat.Name)
	}

	if w := do(r, http.MethodPost, "/anime", strings.Replace(narutoBody, "Action", "Shounen", 1), token); w.Code != http.StatusCreated {
		t.Fatalf("create anime: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodDelete, path, "", token); w.Code != http.StatusBadRequest {
		t.Fatalf("delete referenced category: %d", w.Code)
	}

	w = do(r, http.MethodGet, "/category", "", token)
	var list struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	decode(t, w, &list)
	if len(list.Categories) != 1 || list.Categories[0].Name != "Shounen" {
		t.Fatalf("list = %+v", list)
	}
}
