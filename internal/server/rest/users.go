package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/server/auth"
)

func (h *Handler) handleLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	u, err := h.svc.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := auth.GenerateToken(u.ID, h.secret, h.ttl)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     common.XSRFCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.ttl),
		SameSite: http.SameSiteStrictMode,
	})
	h.logger.Info(ctx, "user logged in", "user", u.ID)
	return ok(c, u)
}

func (h *Handler) handleLogout(c echo.Context) error {
	if claims := sessionClaims(c); claims != nil {
		h.revoked.Revoke(claims)
	}
	c.SetCookie(&http.Cookie{
		Name:   common.XSRFCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return ok(c, true)
}

func (h *Handler) handleAuthenticate(c echo.Context) error {
	u, err := h.svc.Users.Authenticate(c.Request().Context(), sessionClaims(c).UserID)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *Handler) handlePasswordReset(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := h.svc.Users.PasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return ok(c, true)
}

func (h *Handler) handleRegister(c echo.Context) error {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	u, err := h.svc.Users.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.AvatarURL)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *Handler) handleGetUser(c echo.Context) error {
	u, err := h.svc.Users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *Handler) handleUserName(c echo.Context) error {
	var req struct {
		change
		Name string `json:"name"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	u, err := h.svc.Users.UpdateName(c.Request().Context(), c.Param("id"), expected, req.Name)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *Handler) handleUserEmail(c echo.Context) error {
	var req struct {
		change
		Email string `json:"email"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	u, err := h.svc.Users.UpdateEmail(c.Request().Context(), c.Param("id"), expected, req.Email)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *Handler) handleUserPassword(c echo.Context) error {
	var req struct {
		change
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	u, err := h.svc.Users.UpdatePassword(c.Request().Context(), c.Param("id"), expected, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *Handler) handleUserAvatarURL(c echo.Context) error {
	var req struct {
		change
		AvatarURL string `json:"avatarUrl"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	u, err := h.svc.Users.UpdateAvatarURL(c.Request().Context(), c.Param("id"), expected, req.AvatarURL)
	if err != nil {
		return err
	}
	return ok(c, u)
}

func (h *Handler) handleUserState(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req change
		expected, err := bindChange(c, &req)
		if err != nil {
			return err
		}
		u, err := h.svc.Users.ChangeState(c.Request().Context(), c.Param("id"), expected, action)
		if err != nil {
			return err
		}
		return ok(c, u)
	}
}
