package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/store"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 15 * time.Minute

const invalidCredentials = "Invalid email address or password."

// Session is the result of any operation that logs the user in.
type Session struct {
	Token string
	User  *models.User
}

// AccountService implements registration, login, password management and
// the admin user operations.
type AccountService struct {
	users  UserRepository
	tokens *utils.TokenManager
	mailer utils.Mailer
	now    func() time.Time
}

// NewAccountService creates a new AccountService
func NewAccountService(users UserRepository, tokens *utils.TokenManager, mailer utils.Mailer) *AccountService {
	return &AccountService{users: users, tokens: tokens, mailer: mailer, now: time.Now}
}

func (s *AccountService) Register(ctx context.Context, in models.RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	taken, err := s.users.EmailTaken(ctx, in.Email, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, utils.Conflict("Duplicate email entered.")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Avatar:    models.PlaceholderAvatar,
		Role:      models.RoleUser,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *AccountService) Login(ctx context.Context, in models.LoginInput) (*Session, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, utils.BadRequest("Please enter your email address and password.")
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(in.Password, user.Password) {
		return nil, utils.Unauthorized(invalidCredentials)
	}
	return s.session(user)
}

// Authenticate resolves a session token to the user it was issued for.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ParseJWT(token)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.Unauthorized("Invalid token, please login to continue.")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.Unauthorized("The user for this session no longer exists.")
	}
	return user, err
}

// ForgotPassword stores a reset token digest and mails the raw token inside
// resetURL + token. The token is withdrawn again if the mail cannot be sent.
func (s *AccountService) ForgotPassword(ctx context.Context, email, resetURL string) error {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return orNotFound(err, "There is no user account associated with this email address.")
	}

	token, digest, err := utils.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(ResetTokenTTL)); err != nil {
		return err
	}

	subject, body := utils.PasswordRecoveryEmail(user.Email, resetURL+token)
	if err := s.mailer.SendEmail(user.Email, subject, body); err != nil {
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Printf("Failed to clear reset token for %s: %v", user.Email, clearErr)
		}
		return utils.Internal("The password recovery email could not be sent.", err)
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token string, in models.PasswordInput) (*Session, error) {
	user, err := s.users.FindByResetToken(ctx, utils.HashResetToken(token), s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.BadRequest("The reset password link is either invalid or expired.")
	}
	if err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, utils.BadRequest("Passwords do not match.")
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	return s.replacePassword(ctx, user, in.Password)
}

func (s *AccountService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, in models.PasswordChangeInput) (*Session, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, "User not found.")
	}
	if !utils.CheckPassword(in.OldPassword, user.Password) {
		return nil, utils.BadRequest("Old password is incorrect.")
	}
	if in.NewPassword != in.ConfirmPassword {
		return nil, utils.BadRequest("Passwords do not match.")
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	return s.replacePassword(ctx, user, in.NewPassword)
}

// UpdateProfile changes the caller's name and email only.
func (s *AccountService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in models.ProfileInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	taken, err := s.users.EmailTaken(ctx, in.Email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, utils.Conflict("Duplicate email entered.")
	}
	if err := s.users.UpdateProfile(ctx, userID, in.Name, in.Email); err != nil {
		return nil, orNotFound(err, "User not found.")
	}
	return s.GetUser(ctx, userID)
}

func (s *AccountService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "User not found.")
	}
	return user, nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AccountService) UpdateRole(ctx context.Context, id primitive.ObjectID, in models.RoleInput) error {
	if err := models.Validate(in); err != nil {
		return err
	}
	return orNotFound(s.users.UpdateRole(ctx, id, in.Role), "User not found.")
}

func (s *AccountService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return orNotFound(s.users.Delete(ctx, id), "User not found.")
}

func (s *AccountService) replacePassword(ctx context.Context, user *models.User, password string) (*Session, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return nil, orNotFound(err, "User not found.")
	}
	user.Password = hash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpiry = nil
	return s.session(user)
}

func (s *AccountService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}
