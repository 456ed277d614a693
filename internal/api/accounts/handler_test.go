package accounts_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johnwards/menuseed/internal/account"
	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/api/accounts"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
	"github.com/johnwards/menuseed/internal/testhelpers"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	users := store.NewSQLiteUserStore(testhelpers.NewMigratedDB(t))
	svc := account.NewService(users, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	accounts.RegisterRoutes(mux, svc)

	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)
	return srv
}

func signUp(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/account", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func TestCreateAccount(t *testing.T) {
	srv := setupServer(t)

	resp := signUp(t, srv, `{"userId":"unique()","name":" Ada ","email":"ada@example.com","password":"analytical"}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.ID == "" || user.Name != "Ada" || user.Email != "ada@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestCreateAccountMissingFields(t *testing.T) {
	srv := setupServer(t)

	resp := signUp(t, srv, `{"name":"Ada","email":"","password":"pw"}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var apiErr api.Error
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Message != account.ErrMissingFields.Error() {
		t.Errorf("message = %q, want %q", apiErr.Message, account.ErrMissingFields.Error())
	}
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	srv := setupServer(t)

	first := signUp(t, srv, `{"name":"Ada","email":"ada@example.com","password":"pw"}`)
	_ = first.Body.Close()

	resp := signUp(t, srv, `{"name":"Ada Again","email":"ada@example.com","password":"pw2"}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var apiErr api.Error
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Type != accounts.TypeUserExists {
		t.Errorf("type = %q, want %q", apiErr.Type, accounts.TypeUserExists)
	}
}

func TestCreateAccountMalformedBody(t *testing.T) {
	srv := setupServer(t)

	resp := signUp(t, srv, `{`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
