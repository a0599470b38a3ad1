package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// AccountHandler exposes the account lifecycle over HTTP.
type AccountHandler struct {
	service ports.IdentityService
}

func NewAccountHandler(service ports.IdentityService) *AccountHandler {
	return &AccountHandler{service: service}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Address  string `json:"address" validate:"max=255"`
	Phone    string `json:"phone" validate:"max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=customer admin driver masteradmin"`
	AppID    string `json:"app_id" validate:"required"`
}

type activateRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=customer admin driver masteradmin"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// emailRequest identifies an account for code (re)delivery.
type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=customer admin driver masteradmin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=customer admin driver masteradmin"`
	AppID    string `json:"app_id" validate:"required"`
}

type updateProfileRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type registerResponse struct {
	Message string          `json:"message"`
	User    *domain.Profile `json:"user"`
}

type loginResponse struct {
	UserToken string `json:"user_token"`
	AppToken  string `json:"app_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// Register creates a pending account and sends its activation code.
//
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /users/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		AppID:    req.AppID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "account created, check your email for the activation code",
		User:    profile,
	})
}

// Activate verifies the emailed code and activates the account.
//
// @Summary      Activate an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      activateRequest  true  "Activation code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      410   {object}  errorResponse
// @Router       /users/activate [post]
func (h *AccountHandler) Activate(c echo.Context) error {
	var req activateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.service.Activate(c.Request().Context(), ports.ActivateInput{
		Email: req.Email,
		Role:  domain.Role(req.Role),
		Code:  req.Code,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "account activated"})
}

// ResendActivation issues and sends a fresh activation code.
//
// @Summary      Resend the activation code
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /users/activate/resend [post]
func (h *AccountHandler) ResendActivation(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.ResendActivationCode(c.Request().Context(), req.Email, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "a new activation code has been sent"})
}

// Login authenticates an active account and returns its token pair.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.service.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		AppID:    req.AppID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{UserToken: pair.UserToken, AppToken: pair.AppToken})
}

// List returns every account without secret fields.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Profile
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users/all [get]
func (h *AccountHandler) List(c echo.Context) error {
	profiles, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}
	if profiles == nil {
		profiles = []*domain.Profile{}
	}
	return c.JSON(http.StatusOK, profiles)
}

// Profile returns the caller's own profile.
//
// @Summary      Current profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/profile [get]
func (h *AccountHandler) Profile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	profile, err := h.service.GetProfile(c.Request().Context(), claims.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile patches the caller's name, address or phone.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/profile [put]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.service.UpdateProfile(c.Request().Context(), claims.AccountID, ports.ProfileUpdate{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "profile updated"})
}

// ForgotPassword replaces the password with an emailed temporary one.
//
// @Summary      Forgot password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /users/forgot-password [post]
func (h *AccountHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.ForgotPassword(c.Request().Context(), req.Email, domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "a temporary password has been sent"})
}

// UpdatePassword rotates the caller's password. Email and role come from
// the token, never from the body.
//
// @Summary      Update password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/update-password [put]
func (h *AccountHandler) UpdatePassword(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.service.UpdatePassword(c.Request().Context(), ports.UpdatePasswordInput{
		Email:       claims.Email,
		Role:        claims.Role,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// Delete removes an account permanently.
//
// @Summary      Delete account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing account id")
	}

	if err := h.service.DeleteAccount(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}
