// internal/app/system/auth/auth_test.go
package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caseflowhq/caseflow/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSignAndParseRoundTrip(t *testing.T) {
	v := auth.NewVerifier("test-secret")
	want := auth.Principal{
		UserID:    primitive.NewObjectID(),
		CompanyID: primitive.NewObjectID(),
	}

	token, err := v.Sign(want, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := v.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.UserID != want.UserID || got.CompanyID != want.CompanyID {
		t.Errorf("principal = %+v, want %+v", got, want)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewVerifier("secret-a").Sign(auth.Principal{
		UserID:    primitive.NewObjectID(),
		CompanyID: primitive.NewObjectID(),
	}, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := auth.NewVerifier("secret-b").Parse(token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	v := auth.NewVerifier("test-secret")
	token, err := v.Sign(auth.Principal{
		UserID:    primitive.NewObjectID(),
		CompanyID: primitive.NewObjectID(),
	}, -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := v.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestMiddleware(t *testing.T) {
	v := auth.NewVerifier("test-secret")
	p := auth.Principal{
		UserID:    primitive.NewObjectID(),
		CompanyID: primitive.NewObjectID(),
	}
	token, err := v.Sign(p, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := auth.CurrentPrincipal(r.Context())
		if got == nil || got.CompanyID != p.CompanyID {
			t.Errorf("principal in context = %+v", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/internal/signing-requests", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
