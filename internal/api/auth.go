package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lacarte-io/lacarte/internal/auth"
	"github.com/lacarte-io/lacarte/internal/webserver"
)

type signInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Realname string `json:"realname"`
	Password string `json:"password"`
	Locale   string `json:"locale"`
}

type resetPayload struct {
	Email string `json:"email"`
}

type confirmResetPayload struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/auth/signin", authSignIn)
	webserver.ApiPOST("/auth/signup", authSignUp)
	webserver.ApiPOST("/auth/signout", authSignOut)
	webserver.ApiGET("/auth/me", authCurrentUser)
	webserver.ApiPOST("/auth/reset-password", authResetPassword)
	webserver.ApiPOST("/auth/confirm-reset", authConfirmReset)
}

// authStatus maps taxonomy codes onto HTTP status codes. The body keeps
// the uniform result shape either way.
func authStatus(r auth.Result) int {
	if r.Success {
		return http.StatusOK
	}
	switch r.Error.Code {
	case auth.CodeInvalidCredentials, auth.CodeTokenExpired, auth.CodeTokenInvalid:
		return http.StatusUnauthorized
	case auth.CodeAccountDisabled:
		return http.StatusForbidden
	case auth.CodeUserNotFound:
		return http.StatusNotFound
	case auth.CodeEmailExists:
		return http.StatusConflict
	case auth.CodeTooManyAttempts:
		return http.StatusTooManyRequests
	case auth.CodeWeakPassword, auth.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func authResult(c echo.Context, r auth.Result) error {
	return c.JSON(authStatus(r), r)
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func authSignIn(c echo.Context) error {
	var payload signInPayload
	if err := c.Bind(&payload); err != nil {
		return authResult(c, auth.Fail(auth.NewError(auth.CodeInvalidInput, "unable to parse credentials")))
	}
	return authResult(c, authSvc.SignIn(c.Request().Context(), auth.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	}))
}

func authSignUp(c echo.Context) error {
	var payload signUpPayload
	if err := c.Bind(&payload); err != nil {
		return authResult(c, auth.Fail(auth.NewError(auth.CodeInvalidInput, "unable to parse sign-up input")))
	}
	return authResult(c, authSvc.SignUp(c.Request().Context(), auth.SignUpInput{
		Email:    payload.Email,
		Username: payload.Username,
		Realname: payload.Realname,
		Password: payload.Password,
		Locale:   payload.Locale,
	}))
}

func authSignOut(c echo.Context) error {
	return authResult(c, authSvc.SignOut(c.Request().Context(), bearerToken(c)))
}

func authCurrentUser(c echo.Context) error {
	return authResult(c, authSvc.GetCurrentUser(c.Request().Context(), bearerToken(c)))
}

func authResetPassword(c echo.Context) error {
	var payload resetPayload
	if err := c.Bind(&payload); err != nil {
		return authResult(c, auth.Fail(auth.NewError(auth.CodeInvalidInput, "unable to parse reset request")))
	}
	return authResult(c, authSvc.ResetPassword(c.Request().Context(), payload.Email))
}

func authConfirmReset(c echo.Context) error {
	var payload confirmResetPayload
	if err := c.Bind(&payload); err != nil {
		return authResult(c, auth.Fail(auth.NewError(auth.CodeInvalidInput, "unable to parse reset confirmation")))
	}
	return authResult(c, authSvc.ConfirmPasswordReset(c.Request().Context(), payload.Token, payload.NewPassword))
}
