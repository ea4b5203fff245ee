package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/transport/http/handler"
	"github.com/gin-gonic/gin"
)

type fakeProfileUsecase struct {
	profile        func(ctx context.Context, id domain.Identity) (*domain.User, error)
	updateProfile  func(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (*domain.User, error)
	changePassword func(ctx context.Context, id domain.Identity, oldPassword, newPassword string) error
}

func (f *fakeProfileUsecase) Profile(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return f.profile(ctx, id)
}

func (f *fakeProfileUsecase) UpdateProfile(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (*domain.User, error) {
	return f.updateProfile(ctx, id, upd)
}

func (f *fakeProfileUsecase) ChangePassword(ctx context.Context, id domain.Identity, oldPassword, newPassword string) error {
	return f.changePassword(ctx, id, oldPassword, newPassword)
}

func newUserEngine(uc *fakeProfileUsecase, authenticated bool) *gin.Engine {
	h := handler.NewUserHandler(uc, testLogger())

	r := gin.New()
	if authenticated {
		r.Use(withIdentity(ann.Identity()))
	}
	r.GET("/profile", h.Profile)
	r.PATCH("/profile", h.UpdateProfile)
	r.PATCH("/change-password", h.ChangePassword)
	return r
}

func patchJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestProfile_WithoutIdentity_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	newUserEngine(&fakeProfileUsecase{}, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestProfile_ReturnsPublicProjection(t *testing.T) {
	withHash := *ann
	withHash.PasswordHash = "$2a$12$secret"
	uc := &fakeProfileUsecase{
		profile: func(_ context.Context, id domain.Identity) (*domain.User, error) {
			if id.UserID != ann.ID {
				return nil, domain.ErrUserNotFound
			}
			return &withHash, nil
		},
	}

	w := httptest.NewRecorder()
	newUserEngine(uc, true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "$2a$") {
		t.Error("profile must not expose the password hash")
	}
	if !strings.Contains(w.Body.String(), `"email":"ann@x.com"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUpdateProfile_OnlySuppliedFields(t *testing.T) {
	var got domain.ProfileUpdate
	uc := &fakeProfileUsecase{
		updateProfile: func(_ context.Context, _ domain.Identity, upd domain.ProfileUpdate) (*domain.User, error) {
			got = upd
			u := *ann
			u.Bio = *upd.Bio
			return &u, nil
		},
	}

	w := patchJSON(newUserEngine(uc, true), "/profile", `{"bio":"Go developer"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Name != nil || got.Photo != nil {
		t.Errorf("unsupplied fields must stay nil: %+v", got)
	}
	if got.Bio == nil || *got.Bio != "Go developer" {
		t.Errorf("bio = %v", got.Bio)
	}
}

func TestUpdateProfile_Validation_Returns400(t *testing.T) {
	uc := &fakeProfileUsecase{
		updateProfile: func(context.Context, domain.Identity, domain.ProfileUpdate) (*domain.User, error) {
			return nil, domain.NewValidationError("Photo must be a valid URL")
		},
	}
	w := patchJSON(newUserEngine(uc, true), "/profile", `{"photo":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, http.StatusOK},
		{"same password", domain.ErrSamePassword, http.StatusBadRequest},
		{"wrong old password", domain.ErrInvalidCredentials, http.StatusBadRequest},
		{"store failure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeProfileUsecase{
				changePassword: func(_ context.Context, id domain.Identity, oldPassword, newPassword string) error {
					if id.UserID != ann.ID || oldPassword != "secret1" || newPassword != "secret2" {
						t.Errorf("unexpected call: %v %q %q", id, oldPassword, newPassword)
					}
					return tc.err
				},
			}
			w := patchJSON(newUserEngine(uc, true), "/change-password", `{"oldPassword":"secret1","newPassword":"secret2"}`)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
