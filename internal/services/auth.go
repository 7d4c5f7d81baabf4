package services

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bio-clicker-backend/internal/models"
	"bio-clicker-backend/internal/store"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// Credentials is the register/login form.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	ProfileName  string `json:"profile_name"`
	ProfileColor string `json:"profile_color"`
	AvatarURL    string `json:"avatar_url"`
}

// PublicProfile is the projection of a user shown to other users.
type PublicProfile struct {
	Username     string  `json:"username"`
	DisplayName  string  `json:"display_name"`
	ProfileColor string  `json:"profile_color"`
	FlashyColor  string  `json:"flashy_color,omitempty"`
	AvatarURL    string  `json:"avatar_url,omitempty"`
	Balance      float64 `json:"balance"`
	Clicks       int64   `json:"clicks"`
	Premium      bool    `json:"premium"`
	Online       bool    `json:"online"`
}

// AuthResult bundles a session token with the authenticated user.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService owns registration, login and the user-facing account
// reads built on the same document set.
type AuthService struct {
	store    store.Store
	settings *SettingsService
	jwt      *JWTService
	now      func() time.Time
}

func NewAuthService(s store.Store, settings *SettingsService, jwt *JWTService) *AuthService {
	return &AuthService{store: s, settings: settings, jwt: jwt, now: time.Now}
}

// Register creates a user document and returns a session token.
// Usernames are lowercased and must be 3 to 20 characters of letters,
// digits and underscores.
func (a *AuthService) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	if a.settings.ServerClosed(ctx) {
		return nil, models.ErrServerClosed()
	}

	username := models.NormalizeUsername(creds.Username)
	if !usernameRe.MatchString(username) {
		return nil, models.ErrValidation("username must be 3-20 characters of letters, digits or underscores")
	}
	if len(creds.Password) < 6 {
		return nil, models.ErrValidation("password must be at least 6 characters")
	}

	_, err := a.store.GetUser(ctx, username)
	if err == nil {
		return nil, models.ErrConflict("username is taken")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrStorage("user read failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.ErrStorage("password hash failed", err)
	}

	user := models.NewUser(username, string(hash), a.now())
	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("user persist failed", err)
	}

	token, err := a.jwt.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, models.ErrStorage("token generation failed", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. A closed server still
// admits admins so the panel stays reachable.
func (a *AuthService) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	username := models.NormalizeUsername(creds.Username)

	user, err := a.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrUnauthorized("invalid username or password")
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(creds.Password)); err != nil {
		return nil, models.ErrUnauthorized("invalid username or password")
	}
	if user.IsBanned {
		return nil, models.ErrBanned()
	}
	if user.Role != "admin" && a.settings.ServerClosed(ctx) {
		return nil, models.ErrServerClosed()
	}

	user.LastSeen = a.now().UnixMilli()
	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("user persist failed", err)
	}

	token, err := a.jwt.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, models.ErrStorage("token generation failed", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Me returns the caller's own document.
func (a *AuthService) Me(ctx context.Context, username string) (*models.User, error) {
	user, err := a.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}
	return user, nil
}

// MarkPresence bumps the caller's last-seen timestamp.
func (a *AuthService) MarkPresence(ctx context.Context, username string) error {
	user, err := a.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return models.ErrNotFound("user", username)
	}
	if err != nil {
		return models.ErrStorage("user read failed", err)
	}

	now := a.now().UnixMilli()
	if now <= user.LastSeen {
		return nil
	}
	user.LastSeen = now
	if err := a.store.SaveUser(ctx, user); err != nil {
		return models.ErrStorage("presence persist failed", err)
	}
	return nil
}

// UpdateProfile applies the editable profile fields. Flashy fields are
// admin-granted and not touched here.
func (a *AuthService) UpdateProfile(ctx context.Context, username string, input ProfileInput) (*models.User, error) {
	user, err := a.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.ErrNotFound("user", username)
	}
	if err != nil {
		return nil, models.ErrStorage("user read failed", err)
	}

	if name := strings.TrimSpace(input.ProfileName); name != "" {
		if len(name) > 30 {
			return nil, models.ErrValidation("profile name is too long")
		}
		user.ProfileName = name
	}
	if input.ProfileColor != "" {
		user.ProfileColor = input.ProfileColor
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := a.store.SaveUser(ctx, user); err != nil {
		return nil, models.ErrStorage("profile persist failed", err)
	}
	return user, nil
}

// OnlineUsers lists users seen within the online threshold.
func (a *AuthService) OnlineUsers(ctx context.Context) ([]PublicProfile, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, models.ErrStorage("user list failed", err)
	}

	now := a.now()
	online := []PublicProfile{}
	for _, u := range users {
		if u.IsBanned || !u.Online(now, OnlineThreshold) {
			continue
		}
		online = append(online, a.project(u, now))
	}
	sort.Slice(online, func(i, j int) bool { return online[i].Username < online[j].Username })
	return online, nil
}

// Leaderboard returns the top users by balance.
func (a *AuthService) Leaderboard(ctx context.Context) ([]PublicProfile, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, models.ErrStorage("user list failed", err)
	}

	now := a.now()
	ranked := []PublicProfile{}
	for _, u := range users {
		if u.IsBanned || u.Role == "admin" {
			continue
		}
		ranked = append(ranked, a.project(u, now))
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Balance > ranked[j].Balance })
	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}
	return ranked, nil
}

func (a *AuthService) project(u *models.User, now time.Time) PublicProfile {
	return PublicProfile{
		Username:     u.Username,
		DisplayName:  u.DisplayName(),
		ProfileColor: u.ProfileColor,
		FlashyColor:  u.FlashyColor,
		AvatarURL:    u.AvatarURL,
		Balance:      u.Balance,
		Clicks:       u.Clicks,
		Premium:      u.Premium,
		Online:       u.Online(now, OnlineThreshold),
	}
}
