package services

import (
	"context"
	"errors"

	"github.com/obradata/obras_backend/config"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService backs the demo login. There is no authorization model; every
// authenticated user sees everything.
type AuthService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewAuthService(db *gorm.DB, logger *logrus.Logger) *AuthService {
	return &AuthService{DB: db, Logger: logger}
}

// Login checks the credentials against the seeded user and issues a JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		config.LogError(s.Logger, "auth", "Login", "fetch user", username, err)
		return "", nil, err
	}

	if err := utils.ComparePassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.JwtGenerate(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}
