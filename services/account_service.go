package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAccountService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AccountService {
	return &AccountService{db: db, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

type RegisterInput struct {
	FullName string      `json:"full_name" validate:"required,min=3"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=student tutor"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a student or tutor account. Admins only come from the seed.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, storeError(err)
	}
	if count > 0 {
		return nil, &DuplicateError{Message: "email already exists"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		FullName: in.FullName,
		Email:    in.Email,
		Password: string(hashedPassword),
		Role:     in.Role,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &DuplicateError{Message: "email already exists"}
		}
		return nil, storeError(err)
	}
	return &user, nil
}

// Login checks the credentials and returns a signed session token.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(&in); err != nil {
		return "", nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, &AuthenticationError{Message: "invalid email or password"}
		}
		return "", nil, storeError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return "", nil, &AuthenticationError{Message: "invalid email or password"}
	}
	if !user.IsActive {
		return "", nil, &AuthenticationError{Message: "account is deactivated"}
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *AccountService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return t, nil
}

// ParseToken verifies a raw session token and returns its actor.
func (s *AccountService) ParseToken(raw string) (Actor, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, &AuthenticationError{Message: "invalid or expired token"}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, &AuthenticationError{Message: "invalid or expired token"}
	}
	return ActorFromClaims(claims)
}

// ActorFromClaims turns verified session claims into an Actor.
func ActorFromClaims(claims jwt.MapClaims) (Actor, error) {
	rawID, _ := claims["user_id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Actor{}, &AuthenticationError{Message: "invalid user ID in token"}
	}
	role := models.Role(fmt.Sprint(claims["role"]))
	if !role.Valid() {
		return Actor{}, &AuthenticationError{Message: "invalid role in token"}
	}
	email, _ := claims["email"].(string)
	return Actor{ID: id, Email: email, Role: role}, nil
}

func (s *AccountService) ListUsers(ctx context.Context, actor Actor, role models.Role) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, &AuthorizationError{Action: "list users"}
	}
	query := s.db.WithContext(ctx).Order("created_at desc")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// SetActive activates or deactivates an account. Admins cannot deactivate themselves.
func (s *AccountService) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, &AuthorizationError{Action: "change user status"}
	}
	if id == actor.ID && !active {
		return nil, &InvalidStateError{Message: "you cannot deactivate your own account"}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: id.String()}
		}
		return nil, storeError(err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("is_active", active).Error; err != nil {
		return nil, storeError(err)
	}
	user.IsActive = active
	return &user, nil
}
