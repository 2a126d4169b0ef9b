package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// メール・パスワードが合わないを統一（詳細は漏らさない）
var ErrInvalidCredentials = errors.New("invalid credentials")

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// bcryptハッシュと平文を比較
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// アクセストークンを発行する約束
type TokenIssuer interface {
	Issue(userID string, role model.Role, now time.Time) (string, time.Time, error)
}

// AuthUsecase は会員登録とログイン。
// コアはここが出すsubjectを信用するだけで、セッション管理の中身は持たない。
type AuthUsecase struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   TokenIssuer
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	idGen IDGenerator,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
		idGen:    idGen,
		clock:    clock,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type UserOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthOutput struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      UserOutput `json:"user"`
}

// 会員登録実行
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthOutput, error) {
	fields := []string{}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name")
	}
	if !isValidEmailFormat(in.Email) {
		fields = append(fields, "email")
	}
	// password の長さチェック（最小8文字）
	if len(in.Password) < 8 {
		fields = append(fields, "password")
	}
	if len(fields) > 0 {
		return AuthOutput{}, &ValidationError{Fields: fields}
	}

	// email重複チェック
	existing, err := u.users.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return AuthOutput{}, &ConflictError{Reason: "email already used"}
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return AuthOutput{}, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthOutput{}, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return AuthOutput{}, err
	}

	return u.issueFor(user, now)
}

// ログイン実行
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthOutput, error) {
	if !isValidEmailFormat(in.Email) || in.Password == "" {
		return AuthOutput{}, ErrInvalidCredentials
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return AuthOutput{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthOutput{}, err
	}
	if !user.IsActive {
		return AuthOutput{}, ErrInvalidCredentials
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return AuthOutput{}, ErrInvalidCredentials
	}

	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return AuthOutput{}, err
	}

	return u.issueFor(user, now)
}

func (u *AuthUsecase) issueFor(user *model.User, now time.Time) (AuthOutput, error) {
	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return AuthOutput{}, err
	}

	return AuthOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserOutput{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
	}, nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
