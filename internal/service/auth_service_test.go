package service

import (
	"context"
	"testing"
	"time"

	"ministry-shop/internal/domain"
	"ministry-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

// Mock repositories for testing

type mockProfileRepository struct {
	profiles map[string]*domain.Profile
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{
		profiles: make(map[string]*domain.Profile),
	}
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if _, exists := m.profiles[profile.Email]; exists {
		return repository.ErrProfileAlreadyExists
	}
	m.profiles[profile.Email] = profile
	return nil
}

func (m *mockProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	for email, existing := range m.profiles {
		if existing.ID == profile.ID {
			m.profiles[email] = profile
			return nil
		}
	}
	return repository.ErrProfileNotFound
}

func (m *mockProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	profile, exists := m.profiles[email]
	if !exists {
		return nil, repository.ErrProfileNotFound
	}
	return profile, nil
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	for _, profile := range m.profiles {
		if profile.ID == id {
			return profile, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (m *mockProfileRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Profile, int, error) {
	var profiles []*domain.Profile
	for _, profile := range m.profiles {
		profiles = append(profiles, profile)
	}
	return profiles, len(profiles), nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newTestAuthService() (AuthService, *mockProfileRepository, *mockRefreshTokenRepository) {
	profileRepo := newMockProfileRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	return NewAuthService(profileRepo, refreshTokenRepo, "test-secret"), profileRepo, refreshTokenRepo
}

func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, firstName string, lastName string) bool {
			service, _, _ := newTestAuthService()
			ctx := context.Background()

			profile, err := service.Register(ctx, email, password, firstName, lastName, "")
			if err != nil {
				// If registration fails, skip this test case
				return true
			}

			// Verify password is hashed (not equal to plaintext)
			if profile.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			// Verify password hash is a valid bcrypt hash
			err = bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password))
			if err != nil {
				t.Logf("FAIL: Password hash is not a valid bcrypt hash or doesn't match: %v", err)
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.com`),
		gen.RegexMatch(`[a-zA-Z0-9]{8,20}`),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_LoginRejectsWrongPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("login with a wrong password is rejected", prop.ForAll(
		func(password string, wrongPassword string) bool {
			if password == wrongPassword {
				return true
			}

			service, _, _ := newTestAuthService()
			ctx := context.Background()

			_, err := service.Register(ctx, "member@example.com", password, "Grace", "Adeyemi", "")
			if err != nil {
				return true
			}

			_, _, _, err = service.Login(ctx, "member@example.com", wrongPassword)
			return err == ErrInvalidCredentials
		},
		gen.RegexMatch(`[a-zA-Z0-9]{8,20}`),
		gen.RegexMatch(`[a-zA-Z0-9]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_LoginIssuesValidatableTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("access tokens issued at login carry the profile claims", prop.ForAll(
		func(password string) bool {
			service, _, _ := newTestAuthService()
			ctx := context.Background()

			profile, err := service.Register(ctx, "member@example.com", password, "Grace", "Adeyemi", "")
			if err != nil {
				return true
			}

			accessToken, refreshToken, _, err := service.Login(ctx, "member@example.com", password)
			if err != nil {
				t.Logf("FAIL: login failed: %v", err)
				return false
			}
			if refreshToken == "" {
				return false
			}

			claims, err := service.ValidateToken(accessToken)
			if err != nil {
				t.Logf("FAIL: token validation failed: %v", err)
				return false
			}

			return claims.ProfileID == profile.ID && claims.Role == "customer"
		},
		gen.RegexMatch(`[a-zA-Z0-9]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	service, _, refreshTokenRepo := newTestAuthService()
	ctx := context.Background()

	if _, err := service.Register(ctx, "member@example.com", "password123", "Grace", "Adeyemi", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, refreshToken, _, err := service.Login(ctx, "member@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := service.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if !refreshTokenRepo.tokens[refreshToken].Revoked {
		t.Error("refresh token was not revoked on logout")
	}

	// A revoked token can no longer mint access tokens
	if _, err := service.RefreshToken(ctx, refreshToken); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshToken_RejectsExpiredTokens(t *testing.T) {
	service, _, refreshTokenRepo := newTestAuthService()
	ctx := context.Background()

	profile, err := service.Register(ctx, "member@example.com", "password123", "Grace", "Adeyemi", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	expired := &domain.RefreshToken{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	}
	if err := refreshTokenRepo.Create(ctx, expired); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := service.RefreshToken(ctx, "expired-token"); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestUpdateProfile_ChangesEditableFields(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	profile, err := service.Register(ctx, "member@example.com", "password123", "Grace", "Adeyemi", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := service.UpdateProfile(ctx, profile.ID, "Amara", "Okafor", "+2348098765432")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.FirstName != "Amara" || updated.LastName != "Okafor" || updated.Phone != "+2348098765432" {
		t.Errorf("profile fields were not updated: %+v", updated)
	}
	if updated.Email != "member@example.com" {
		t.Errorf("email must not change on profile update, got %s", updated.Email)
	}
}
