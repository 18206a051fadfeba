package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/pkg/serverutils"
	"sync-notes-be/internal/repository/specification"
	"sync-notes-be/internal/repository/unitofwork"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	jwtSecret  string
	jwtTTL     time.Duration
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, jwtSecret string, jwtTTL time.Duration) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		jwtSecret:  jwtSecret,
		jwtTTL:     jwtTTL,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return err
	}
	if existing != nil {
		return serverutils.NewValidationError("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := entity.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		Created:  time.Now().UTC(),
	}
	return uow.UserRepository().Create(ctx, &user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewValidationError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, serverutils.NewValidationError("invalid credentials")
	}

	claims := jwt.MapClaims{
		"user_id":  user.Id,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: signedToken}, nil
}
