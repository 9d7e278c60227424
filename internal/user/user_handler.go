package user

import (
	"io"
	"net/http"
	"sort"
	"strings"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"
	usererrors "go-leave/internal/user/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc       Service
	maxAvatar int64
	logger    *zap.Logger
}

func NewHandler(service Service, opts Options, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
	}
	return &Handler{svc: service, maxAvatar: opts.MaxAvatarBytes, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("user request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Me(c *gin.Context) {
	resp, err := h.svc.Me(c.Request.Context(), c.GetString("user_id_validated"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	q := strings.TrimSpace(strings.ToLower(c.Query("q")))
	if q != "" {
		filtered := make([]UserResponse, 0, len(resp))
		for _, u := range resp {
			if strings.Contains(strings.ToLower(u.Email), q) || strings.Contains(strings.ToLower(u.Name), q) {
				filtered = append(filtered, u)
			}
		}
		resp = filtered
	}

	if dept := strings.TrimSpace(c.Query("department")); dept != "" {
		filtered := make([]UserResponse, 0, len(resp))
		for _, u := range resp {
			if strings.EqualFold(strings.TrimSpace(u.Department), dept) {
				filtered = append(filtered, u)
			}
		}
		resp = filtered
	}

	sortBy := strings.ToLower(strings.TrimSpace(c.DefaultQuery("sort_by", "name")))
	desc := strings.EqualFold(c.Query("sort_dir"), "desc")
	sort.SliceStable(resp, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "email":
			less = strings.ToLower(resp[i].Email) < strings.ToLower(resp[j].Email)
		case "created_at":
			less = resp[i].CreatedAt < resp[j].CreatedAt
		default:
			less = strings.ToLower(resp[i].Name) < strings.ToLower(resp[j].Name)
		}
		if desc {
			return !less
		}
		return less
	})

	page, pageSize := response.PageParams(c)
	start, end := response.Window(len(resp), page, pageSize)
	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) Options(c *gin.Context) {
	resp, err := h.svc.GetOptions(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		h.writeServiceError(c, usererrors.ErrAvatarRequired)
		return
	}

	if h.maxAvatar > 0 && fileHeader.Size > h.maxAvatar {
		h.writeServiceError(c, usererrors.ErrAvatarTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxAvatar > 0 {
		r = io.LimitReader(f, h.maxAvatar+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if h.maxAvatar > 0 && int64(len(data)) > h.maxAvatar {
		h.writeServiceError(c, usererrors.ErrAvatarTooLarge)
		return
	}

	resp, err := h.svc.UploadAvatar(c.Request.Context(), c.GetString("user_id_validated"), http.DetectContentType(data), data)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
