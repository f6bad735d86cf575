package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"bulut3d/apps/coupon"
	"bulut3d/apps/user/model"
	"bulut3d/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("user: email already registered")
	ErrInvalidCredentials = errors.New("user: invalid email or password")
	ErrInvalidInput       = errors.New("user: invalid input")
	ErrNotFound           = errors.New("user: not found")
	ErrRevoked            = errors.New("user: session has been signed out")
)

const minPasswordLen = 6

// Session is the authenticated identity of one request.
type Session struct {
	UserID    uint      `json:"userId"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Profile is the public view of a user.
type Profile struct {
	ID       uint      `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Phone    string    `json:"phoneNumber,omitempty"`
	Address  string    `json:"address,omitempty"`
	JoinDate time.Time `json:"joinDate"`
	IsAdmin  bool      `json:"isAdmin"`
}

type LoginResult struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
	User    Profile `json:"user"`
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// WelcomeGranter hands out the sign-up coupon.
type WelcomeGranter interface {
	GrantWelcome(ctx context.Context, userID uint) (coupon.Coupon, error)
}

type Service struct {
	db         *gorm.DB
	rdb        *redis.Client
	signer     *jwt.Signer
	adminEmail string
	welcome    WelcomeGranter
}

func NewService(db *gorm.DB, rdb *redis.Client, signer *jwt.Signer, adminEmail string, welcome WelcomeGranter) *Service {
	return &Service{db: db, rdb: rdb, signer: signer, adminEmail: strings.TrimSpace(adminEmail), welcome: welcome}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin compares against the configured admin address, ignoring case.
func (s *Service) IsAdmin(email string) bool {
	return s.adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), s.adminEmail)
}

func (s *Service) profile(u model.User) Profile {
	return Profile{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Address:  u.Address,
		JoinDate: u.CreatedAt,
		IsAdmin:  s.IsAdmin(u.Email),
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (LoginResult, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return LoginResult{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return LoginResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	var cnt int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&cnt).Error; err != nil {
		return LoginResult{}, err
	}
	if cnt > 0 {
		return LoginResult{}, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResult{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Email:    email,
		Password: string(hashed),
		FullName: strings.TrimSpace(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return LoginResult{}, fmt.Errorf("create user: %w", err)
	}
	log.Printf("[user] registered %d", u.ID)
	return s.issue(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// issue signs a token and grants the welcome coupon on first sign-in.
func (s *Service) issue(ctx context.Context, u model.User) (LoginResult, error) {
	isAdmin := s.IsAdmin(u.Email)
	token, claims, err := s.signer.GenerateToken(u.ID, u.Email, isAdmin)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	if s.welcome != nil {
		if _, err := s.welcome.GrantWelcome(ctx, u.ID); err != nil {
			log.Printf("[user] welcome coupon for %d failed: %v", u.ID, err)
		}
	}
	return LoginResult{Token: token, Session: sessionOf(claims), User: s.profile(u)}, nil
}

func sessionOf(c *jwt.Claims) Session {
	s := Session{UserID: c.UserId, Email: c.Email, IsAdmin: c.IsAdmin, TokenID: c.ID}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

func revokedKey(tokenID string) string {
	return "jwt:revoked:" + tokenID
}

// Authenticate parses a bearer token and rejects signed-out sessions.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	claims, err := s.signer.ParseToken(token)
	if err != nil {
		return Session{}, err
	}
	sess := sessionOf(claims)
	if s.rdb != nil && sess.TokenID != "" {
		n, err := s.rdb.Exists(ctx, revokedKey(sess.TokenID)).Result()
		if err != nil {
			return Session{}, fmt.Errorf("check revocation: %w", err)
		}
		if n > 0 {
			return Session{}, ErrRevoked
		}
	}
	// the admin address may have changed since the token was issued
	sess.IsAdmin = s.IsAdmin(sess.Email)
	return sess, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, sess Session) error {
	if s.rdb == nil || sess.TokenID == "" {
		return nil
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedKey(sess.TokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, id uint) (model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, ErrNotFound
	}
	return u, err
}

func (s *Service) Me(ctx context.Context, id uint) (Profile, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return s.profile(u), nil
}

// UpdateProfile changes only the non-empty fields.
func (s *Service) UpdateProfile(ctx context.Context, id uint, fullName, phone, address string) (Profile, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	updates := make(map[string]interface{})
	if v := strings.TrimSpace(fullName); v != "" {
		updates["full_name"] = v
	}
	if v := strings.TrimSpace(phone); v != "" {
		updates["phone"] = v
	}
	if v := strings.TrimSpace(address); v != "" {
		updates["address"] = v
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
			return Profile{}, fmt.Errorf("update profile: %w", err)
		}
	}
	return s.Me(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&u).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
