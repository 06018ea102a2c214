package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/pkg/common"
)

const (
	sessionTokenTTL = 24 * time.Hour
	resetTokenTTL   = 30 * time.Minute

	maxSignInAttempts = 5
	attemptWindow     = 15 * time.Minute
)

// LocalProvider is the GORM-backed default identity provider: bcrypt
// password hashes in sys_user, HS256 JWT session and reset tokens.
type LocalProvider struct {
	db        *gorm.DB
	jwtSecret []byte

	mu       sync.Mutex
	attempts map[string]*attemptState
	revoked  map[string]time.Time // token -> expiry
}

type attemptState struct {
	count int
	first time.Time
}

func NewLocalProvider(db *gorm.DB, jwtSecret string) *LocalProvider {
	return &LocalProvider{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		attempts:  map[string]*attemptState{},
		revoked:   map[string]time.Time{},
	}
}

func identityOf(u *domain.SysUser) *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Realname:  u.Realname,
		Level:     u.Level,
		Locale:    u.Locale,
		LastLogin: u.LastLogin,
	}
}

func (p *LocalProvider) throttled(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.attempts[email]
	if st == nil || time.Since(st.first) > attemptWindow {
		return false
	}
	return st.count >= maxSignInAttempts
}

func (p *LocalProvider) recordFailure(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.attempts[email]
	if st == nil || time.Since(st.first) > attemptWindow {
		p.attempts[email] = &attemptState{count: 1, first: time.Now()}
		return
	}
	st.count++
}

func (p *LocalProvider) clearFailures(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.attempts, email)
}

func (p *LocalProvider) issueToken(userID int64, email, level, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     cast.ToString(userID),
		"email":   email,
		"level":   level,
		"purpose": purpose,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(p.jwtSecret)
	return signed, errors.Wrap(err, "sign token")
}

func (p *LocalProvider) parseToken(raw, purpose string) (int64, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return p.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, NewError(CodeTokenExpired, "token expired")
	case err != nil:
		return 0, NewError(CodeTokenInvalid, "token invalid")
	}
	if cast.ToString(claims["purpose"]) != purpose {
		return 0, NewError(CodeTokenInvalid, "token invalid")
	}
	return cast.ToInt64(claims["sub"]), nil
}

func (p *LocalProvider) SignIn(ctx context.Context, creds Credentials) (*Identity, string, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if p.throttled(email) {
		return nil, "", NewError(CodeTooManyAttempts, "too many sign-in attempts, retry later")
	}

	var user domain.SysUser
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p.recordFailure(email)
		return nil, "", NewError(CodeInvalidCredentials, "invalid email or password")
	case err != nil:
		return nil, "", errors.Wrap(err, "query user")
	}

	if user.Status != common.ENABLED {
		return nil, "", NewError(CodeAccountDisabled, "account disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)) != nil {
		p.recordFailure(email)
		return nil, "", NewError(CodeInvalidCredentials, "invalid email or password")
	}
	p.clearFailures(email)

	token, err := p.issueToken(user.ID, user.Email, user.Level, "session", sessionTokenTTL)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	_ = p.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ?", user.ID).
		Update("last_login", now).Error
	user.LastLogin = now

	return identityOf(&user), token, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, in SignUpInput) (*Identity, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var count int64
	if err := p.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "query user")
	}
	if count > 0 {
		return nil, NewError(CodeEmailExists, "an account with this email already exists")
	}

	if len(in.Password) < 8 {
		return nil, NewError(CodeWeakPassword, "password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := domain.SysUser{
		ID:        common.UUIDint64(),
		Email:     email,
		Username:  strings.TrimSpace(in.Username),
		Realname:  strings.TrimSpace(in.Realname),
		Password:  string(hashed),
		Level:     "member",
		Status:    common.ENABLED,
		Locale:    in.Locale,
		LastLogin: time.Now(),
	}
	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return identityOf(&user), nil
}

// SignOut revokes a session token until its natural expiry. The denylist
// is in-memory; a restart ends all sessions anyway since tokens carry
// their own expiry.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	if _, err := p.parseToken(token, "session"); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[token] = time.Now().Add(sessionTokenTTL)
	for t, exp := range p.revoked {
		if time.Now().After(exp) {
			delete(p.revoked, t)
		}
	}
	return nil
}

func (p *LocalProvider) isRevoked(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.revoked[token]
	return ok
}

func (p *LocalProvider) GetCurrentUser(ctx context.Context, token string) (*Identity, error) {
	if p.isRevoked(token) {
		return nil, NewError(CodeTokenInvalid, "token invalid")
	}
	userID, err := p.parseToken(token, "session")
	if err != nil {
		return nil, err
	}
	var user domain.SysUser
	dberr := p.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	switch {
	case errors.Is(dberr, gorm.ErrRecordNotFound):
		return nil, NewError(CodeUserNotFound, "user not found")
	case dberr != nil:
		return nil, errors.Wrap(dberr, "query user")
	}
	return identityOf(&user), nil
}

func (p *LocalProvider) ResetPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user domain.SysUser
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", NewError(CodeUserNotFound, "no account for this email")
	case err != nil:
		return "", errors.Wrap(err, "query user")
	}
	return p.issueToken(user.ID, user.Email, user.Level, "reset", resetTokenTTL)
}

func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userID, err := p.parseToken(token, "reset")
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return NewError(CodeWeakPassword, "password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	return errors.Wrap(p.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password":   string(hashed),
			"updated_at": time.Now(),
		}).Error, "update password")
}
