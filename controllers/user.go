package controllers

import (
	"fmt"
	"net/http"

	"ecommerce-backend/models"
	"ecommerce-backend/services"
	"ecommerce-backend/utils"

	"github.com/gorilla/mux"
)

// UserController handles account and user administration requests
type UserController struct {
	Accounts *services.AccountService
	View     *Presenter
}

// NewUserController creates a new UserController
func NewUserController(accounts *services.AccountService, view *Presenter) *UserController {
	return &UserController{Accounts: accounts, View: view}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	session, err := uc.Accounts.Register(ctx, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.sendSession(w, r, http.StatusCreated, session)
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	session, err := uc.Accounts.Login(ctx, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.sendSession(w, r, http.StatusOK, session)
}

// Logout clears the session cookie
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	uc.View.ClearToken(w)
	respond(w, http.StatusOK, map[string]any{"message": "Logged out."})
}

// ForgotPassword mails a password reset link
func (uc *UserController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}
	if in.Email == "" {
		utils.WriteError(w, utils.BadRequest("Please enter email."))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.Accounts.ForgotPassword(ctx, in.Email, resetURLPrefix(r)); err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("Email sent to %s successfully.", in.Email)})
}

// ResetPassword sets a new password using the token from the reset link
func (uc *UserController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in models.PasswordInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	session, err := uc.Accounts.ResetPassword(ctx, mux.Vars(r)["token"], in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.sendSession(w, r, http.StatusOK, session)
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.sendUser(w, user)
}

// UpdatePassword changes the caller's password and issues a fresh session
func (uc *UserController) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.PasswordChangeInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	session, err := uc.Accounts.UpdatePassword(ctx, user.ID, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.sendSession(w, r, http.StatusOK, session)
}

// UpdateProfile changes the caller's name and email
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.ProfileInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	updated, err := uc.Accounts.UpdateProfile(ctx, user.ID, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.sendUser(w, updated)
}

// GetAllUsers lists every user (Admin only)
func (uc *UserController) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	users, err := uc.Accounts.ListUsers(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	body, err := uc.View.Users(users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"users": body})
}

// GetUser retrieves a single user (Admin only)
func (uc *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Accounts.GetUser(ctx, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.sendUser(w, user)
}

// UpdateUserRole changes a user's role (Admin only)
func (uc *UserController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var in models.RoleInput
	if err := decode(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.Accounts.UpdateRole(ctx, id, in); err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// DeleteUser removes a user account (Admin only)
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.Accounts.DeleteUser(ctx, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"message": "User deleted successfully."})
}

func (uc *UserController) sendSession(w http.ResponseWriter, r *http.Request, status int, session *services.Session) {
	body, err := uc.View.User(session.User)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	uc.View.SetToken(w, r, session.Token)
	respond(w, status, map[string]any{"token": session.Token, "user": body})
}

func (uc *UserController) sendUser(w http.ResponseWriter, user *models.User) {
	body, err := uc.View.User(user)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"user": body})
}
