package auth

import (
	"net/http"
	"time"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/shared/apperror"
	platform "go-leave/internal/shared/request"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Handler struct {
	service Service
	cookies CookieOptions
	logger  *zap.Logger
}

func NewHandler(s Service, cookies CookieOptions, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	if cookies.AccessTTL <= 0 {
		cookies.AccessTTL = 15 * time.Minute
	}
	if cookies.RefreshTTL <= 0 {
		cookies.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Handler{service: s, cookies: cookies, logger: l}
}

func (ctrl *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	ctrl.logger.Warn("auth request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (ctrl *Handler) writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	response.Error(c, http.StatusBadRequest, appErr.Code, appErr.Message, nil)
}

func isWeb(c *gin.Context) bool {
	return platform.IsWebClient(platform.ResolveClientType(c.GetHeader("X-Client-Type"), c.GetHeader("User-Agent")))
}

func (ctrl *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ctrl.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ctrl *Handler) setTokenCookies(c *gin.Context, pair TokenPair) {
	ctrl.setCookie(c, accessCookie, pair.AccessToken, int(ctrl.cookies.AccessTTL.Seconds()))
	ctrl.setCookie(c, refreshCookie, pair.RefreshToken, int(ctrl.cookies.RefreshTTL.Seconds()))
}

func (ctrl *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.writeBindError(c, err)
		return
	}

	pair, userResp, err := ctrl.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ctrl.writeServiceError(c, err)
		return
	}

	if isWeb(c) {
		ctrl.setTokenCookies(c, pair)
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":          userResp,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, nil)
}

func (ctrl *Handler) Logout(c *gin.Context) {
	ctrl.setCookie(c, accessCookie, "", -1)
	ctrl.setCookie(c, refreshCookie, "", -1)
	response.Success(c, http.StatusOK, "Logout success.", nil)
}

func (ctrl *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.writeBindError(c, err)
		return
	}

	res, err := ctrl.service.Register(c.Request.Context(), req)
	if err != nil {
		ctrl.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}

func (ctrl *Handler) RefreshToken(c *gin.Context) {
	web := isWeb(c)

	var refreshToken string
	if web {
		var err error
		refreshToken, err = c.Cookie(refreshCookie)
		if err != nil || refreshToken == "" {
			ctrl.writeServiceError(c, autherrors.ErrTokenNotFound)
			return
		}
	} else {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ctrl.writeBindError(c, err)
			return
		}
		refreshToken = req.RefreshToken
	}

	pair, userResp, err := ctrl.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		ctrl.writeServiceError(c, err)
		return
	}

	if web {
		ctrl.setTokenCookies(c, pair)
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":          userResp,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, nil)
}
