package service

import (
	"context"
	"errors"
	"testing"

	"trading_academy_backend/internal/repository"
	"trading_academy_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *ViewerService) {
	t.Helper()
	viewer := NewViewerService(newCourseService(t))
	auth, err := NewAuthService(repository.NewMemorySessionRepository(), viewer, testConfig())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return auth, viewer
}

func TestSignInRoles(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		wantAdmin bool
	}{
		{"admin credentials", "admin@example.com", "admin123", true},
		{"admin email any case", " Admin@Example.com", "admin123", true},
		{"admin email wrong password", "admin@example.com", "guess", false},
		{"any other user", "trader@example.com", "whatever", false},
		{"empty password", "trader@example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, _ := newAuthService(t)

			res, err := auth.SignIn(context.Background(), SignInRequest{Email: tt.email, Password: tt.password})
			if err != nil {
				t.Fatalf("SignIn: %v", err)
			}
			if !res.Session.IsAuthenticated {
				t.Fatalf("session not authenticated")
			}
			if res.Session.IsAdmin != tt.wantAdmin {
				t.Fatalf("isAdmin: got=%v want=%v", res.Session.IsAdmin, tt.wantAdmin)
			}
			if res.Token == "" {
				t.Fatalf("empty token")
			}
		})
	}
}

func TestSignInWithConfiguredHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	cfg := testConfig()
	cfg.Admin.Password = ""
	cfg.Admin.PasswordHash = string(hash)

	auth, err := NewAuthService(repository.NewMemorySessionRepository(), nil, cfg)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	res, _ := auth.SignIn(context.Background(), SignInRequest{Email: "admin@example.com", Password: "s3cret!"})
	if !res.Session.IsAdmin {
		t.Fatalf("configured hash not honoured")
	}
}

func TestSignUpValidation(t *testing.T) {
	tests := []struct {
		name string
		req  SignUpRequest
	}{
		{"short name", SignUpRequest{Name: "A", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1"}},
		{"short password", SignUpRequest{Name: "Ann", Email: "a@example.com", Password: "abc", ConfirmPassword: "abc"}},
		{"mismatch", SignUpRequest{Name: "Ann", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"}},
		{"no email", SignUpRequest{Name: "Ann", Password: "secret1", ConfirmPassword: "secret1"}},
	}

	auth, _ := newAuthService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.SignUp(context.Background(), tt.req); !errors.Is(err, util.ErrValidation) {
				t.Fatalf("SignUp: err=%v", err)
			}
		})
	}

	res, err := auth.SignUp(context.Background(), SignUpRequest{Name: " Ann ", Email: "Ann@Example.com", Password: "secret1", ConfirmPassword: "secret1"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if res.Session.Name != "Ann" || res.Session.Email != "ann@example.com" || res.Session.IsAdmin {
		t.Fatalf("session: %+v", res.Session)
	}
}

func TestResumeAndSignOut(t *testing.T) {
	ctx := context.Background()
	auth, viewer := newAuthService(t)

	res, err := auth.SignIn(ctx, SignInRequest{Email: "trader@example.com"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	sess, err := auth.Resume(ctx, res.Token)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if sess.ID != res.Session.ID || sess.Email != "trader@example.com" {
		t.Fatalf("Resume: got=%+v", sess)
	}

	if _, err := viewer.Courses.EnrollInCourse(ctx, sess.UserID(), "1"); err != nil {
		t.Fatalf("EnrollInCourse: %v", err)
	}
	viewer.Next(ctx, sess, "1")
	if err := auth.SignOut(ctx, sess); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := auth.Resume(ctx, res.Token); !errors.Is(err, util.ErrUnauthorized) {
		t.Fatalf("Resume after sign out: err=%v", err)
	}
	if st, _ := viewer.State(sess, "1"); st.CurrentIndex != 0 {
		t.Fatalf("viewer pointer kept after sign out: %d", st.CurrentIndex)
	}
	if got := viewer.Courses.ListEnrolled(sess.UserID()); len(got) != 0 {
		t.Fatalf("enrollments kept after sign out: %+v", got)
	}

	if _, err := auth.Resume(ctx, "not-a-token"); !errors.Is(err, util.ErrUnauthorized) {
		t.Fatalf("Resume(garbage): err=%v", err)
	}
}

func TestEnrollmentsBelongToSession(t *testing.T) {
	ctx := context.Background()
	auth, viewer := newAuthService(t)

	first, err := auth.SignIn(ctx, SignInRequest{Email: "trader@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, err := viewer.Courses.EnrollInCourse(ctx, first.Session.UserID(), "1"); err != nil {
		t.Fatalf("EnrollInCourse: %v", err)
	}

	second, err := auth.SignIn(ctx, SignInRequest{Email: "trader@example.com", Password: "other"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if second.Session.UserID() == first.Session.UserID() {
		t.Fatalf("sessions share an enrolled set: %s", second.Session.UserID())
	}
	if got := viewer.Courses.ListEnrolled(second.Session.UserID()); len(got) != 0 {
		t.Fatalf("second session sees enrollments: %+v", got)
	}
}
