package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etukas/marketplace/internal/config"
	"github.com/etukas/marketplace/internal/middleware"
	"github.com/etukas/marketplace/internal/model"
	"github.com/etukas/marketplace/internal/repository"
	"github.com/etukas/marketplace/internal/utils"
)

// AuthHandler bundles dependencies for registration, login, session and
// profile-address endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// stringList accepts either a JSON array of strings or a single string,
// matching what registration forms historically sent for the category.
type stringList []string

func (s *stringList) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one != "" {
		*s = []string{one}
	}
	return nil
}

// ----- DTOs -----

type registerReq struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	Role           string     `json:"role"`
	Phone          string     `json:"phone"`
	SellerCategory stringList `json:"sellerCategory"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Phone    string  `json:"phone"`
	SellerID *string `json:"seller_id,omitempty"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Phone: u.Phone, SellerID: u.SellerID}
}

// sessionResponse sets the HTTP-only session cookie and echoes the token
// in the body so non-browser clients can use the Bearer scheme.
func (h *AuthHandler) sessionResponse(c echo.Context, status int, u model.User) error {
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.SessionTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "issue session failed")
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Expires:  tok.Exp,
		HttpOnly: true,
		Path:     "/",
		Secure:   h.Cfg.Env == "prod",
	})
	return c.JSON(status, echo.Map{"success": true, "token": tok.Token, "user": toUserPart(u)})
}

// Register creates an account and opens a session immediately. Selling
// roles are assigned their seller identifier here.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleCustomer
	}

	var msgs []string
	if strings.TrimSpace(req.Name) == "" {
		msgs = append(msgs, "please add a name")
	}
	if req.Email == "" || !emailRe.MatchString(req.Email) {
		msgs = append(msgs, "please add a valid email")
	}
	if len(req.Password) < 6 {
		msgs = append(msgs, "password must be at least 6 characters")
	}
	if strings.TrimSpace(req.Phone) == "" {
		msgs = append(msgs, "please add a phone number")
	}
	if !model.ValidRole(role) {
		msgs = append(msgs, "unknown role")
	}
	if len(msgs) > 0 {
		return failFields(c, msgs)
	}

	categories := []string(req.SellerCategory)
	if model.IsSellingRole(role) && role != model.RoleAdmin && len(categories) == 0 {
		categories = []string{utils.DefaultSellerCategory}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, strings.TrimSpace(req.Name), req.Email, req.Password, role,
		strings.TrimSpace(req.Phone), categories, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return fail(c, http.StatusConflict, kindDuplicateEmail, "email already exists")
		case errors.Is(err, repository.ErrSellerIDExhausted):
			return fail(c, http.StatusConflict, kindDuplicateID, "could not assign a seller id, please retry")
		case errors.Is(err, utils.ErrPasswordTooShort):
			return failFields(c, []string{err.Error()})
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "create user failed")
	}
	return h.sessionResponse(c, http.StatusCreated, u)
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password produce the identical response to avoid user enumeration.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, kindInvalidCredentials, "invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, kindInvalidCredentials, "invalid credentials")
	}
	return h.sessionResponse(c, http.StatusOK, u)
}

// Me returns the authenticated user's public fields.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, kindUnauthenticated, "unknown user")
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "load user failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

// Logout revokes the current session token and clears the cookie. The
// token hash goes on the Redis denylist for the rest of the token's
// 30-day window, so the session dies immediately everywhere.
func (h *AuthHandler) Logout(c echo.Context) error {
	if raw, ok := c.Get("token").(string); ok && raw != "" && h.Sessions != nil {
		ttl := time.Duration(h.Cfg.SessionTTLDays) * 24 * time.Hour
		_ = h.Sessions.Revoke(c.Request().Context(), utils.HashToken(raw), ttl)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type addressReq struct {
	Label       string  `json:"label"`
	AddressLine string  `json:"address_line"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// AddAddress saves a delivery location on the profile.
func (h *AuthHandler) AddAddress(c echo.Context) error {
	uid, _ := currentUser(c)
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	var msgs []string
	if strings.TrimSpace(req.Label) == "" {
		msgs = append(msgs, "label is required")
	}
	if strings.TrimSpace(req.AddressLine) == "" {
		msgs = append(msgs, "address line is required")
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		msgs = append(msgs, "coordinates out of range")
	}
	if len(msgs) > 0 {
		return failFields(c, msgs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.Address{UserID: uid, Label: req.Label, AddressLine: req.AddressLine, Lat: req.Lat, Lng: req.Lng}
	if err := h.Users.AddAddress(ctx, &a); err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "save address failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": a})
}

// ListAddresses returns the profile's saved locations.
func (h *AuthHandler) ListAddresses(c echo.Context) error {
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	addrs, err := h.Users.ListAddresses(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "load addresses failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(addrs), "data": addrs})
}
