package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"
	"politicianfinder/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const otpExpiry = 10 * time.Minute

type AuthService interface {
	Register(req RegisterRequest) (*RegisterResponse, error)
	VerifyOTP(email, otpCode string) (*AuthResponse, error)
	ResendOTP(email string) error
	Login(req LoginRequest) (*AuthResponse, error)
	RefreshToken(refreshToken string) (*AuthResponse, error)
	GetUserByID(userID string) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	emailService *EmailService
	jwtSecret    string
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user"`
}

func NewAuthService(userRepo repository.UserRepository, emailService *EmailService, jwtSecret string) AuthService {
	return &authService{
		userRepo:     userRepo,
		emailService: emailService,
		jwtSecret:    jwtSecret,
	}
}

// Register creates an unverified account and emails the OTP code.
func (s *authService) Register(req RegisterRequest) (*RegisterResponse, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, errors.New("email already registered")
	}
	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, errors.New("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		UserType:     model.UserTypeUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, errors.New("failed to create user")
	}

	if err := s.sendOTP(user); err != nil {
		log.Printf("Failed to send OTP email to %s: %v", user.Email, err)
	}

	return &RegisterResponse{
		Message: "Registration successful. Check your email for the verification code.",
		User:    user,
	}, nil
}

// VerifyOTP checks the code and returns tokens on success.
func (s *authService) VerifyOTP(email, otpCode string) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if user.OTPCode == nil || *user.OTPCode != otpCode {
		return nil, errors.New("invalid verification code")
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return nil, errors.New("verification code expired")
	}

	if err := s.userRepo.ClearOTP(user.ID); err != nil {
		return nil, errors.New("failed to verify account")
	}
	user.IsVerified = true

	return s.issueTokens(user)
}

// ResendOTP generates a fresh code for an unverified account.
func (s *authService) ResendOTP(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return errors.New("user not found")
	}
	if user.IsVerified {
		return errors.New("email already verified")
	}
	return s.sendOTP(user)
}

// Login authenticates with email and password.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, storeErr(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}
	if !user.IsVerified {
		return nil, errors.New("email not verified")
	}
	if user.IsBanned {
		return nil, errors.New("account is banned")
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Printf("Failed to update last login for %s: %v", user.ID, err)
	}

	return s.issueTokens(user)
}

// RefreshToken exchanges a valid refresh token for a fresh pair.
func (s *authService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, errors.New("invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	if user.IsBanned {
		return nil, errors.New("account is banned")
	}

	return s.issueTokens(user)
}

func (s *authService) GetUserByID(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *authService) issueTokens(user *model.User) (*AuthResponse, error) {
	token, err := util.GenerateToken(user.ID, user.Email, user.UserType, s.jwtSecret)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	refresh, err := util.GenerateRefreshToken(user.ID, user.Email, user.UserType, s.jwtSecret)
	if err != nil {
		return nil, errors.New("failed to generate refresh token")
	}

	return &AuthResponse{
		Token:        token,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

func (s *authService) sendOTP(user *model.User) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateOTP(user.Email, code, time.Now().Add(otpExpiry)); err != nil {
		return err
	}
	if s.emailService == nil {
		return nil
	}
	return s.emailService.SendOTPEmail(user.Email, user.FullName, code)
}

// generateOTP returns a 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := ""
	for _, v := range b {
		code += fmt.Sprintf("%d", int(v)%10)
	}
	return code, nil
}
