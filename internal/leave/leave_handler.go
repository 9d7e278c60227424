package leave

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
	opts    Options
	logger  *zap.Logger
}

func NewHandler(service Service, opts Options, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, opts: opts, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	h.logger.Debug("leave request binding failed", zap.Error(err))
	response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, err.Error())
}

// Create accepts JSON, or multipart form fields plus an optional proof file.
func (h *Handler) Create(c *gin.Context) {
	actorID := c.GetString("user_id_validated")

	var (
		req   SubmitLeaveRequest
		proof *ProofUpload
	)

	if strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			h.writeBindError(c, err)
			return
		}
		upload, err := readProof(c, h.opts.MaxProofBytes)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		proof = upload
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), actorID, req, proof)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// readProof never buffers more than limit+1 bytes of the upload.
func readProof(c *gin.Context, limit int64) (*ProofUpload, error) {
	fh, err := c.FormFile("proof")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, apperror.InvalidField("proof")
	}

	if limit > 0 && fh.Size > limit {
		return nil, leaveerrors.ErrProofTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, leaveerrors.ErrProofTooLarge
	}

	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return &ProofUpload{Data: data, MimeType: mime}, nil
}

func (h *Handler) GetAll(c *gin.Context) {
	page, pageSize := response.PageParams(c)
	resp, total, err := h.service.GetAll(c.Request.Context(), c.GetString("user_id_validated"), c.GetBool("has_read_all"), ListQuery{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.GetString("user_id_validated"), c.GetBool("has_read_all"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetProof(c *gin.Context) {
	doc, err := h.service.GetProof(c.Request.Context(), c.GetString("user_id_validated"), c.GetBool("has_read_all"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"proof-%s\"", c.Param("id")))
	c.Data(http.StatusOK, doc.MimeType, doc.Data)
}

// UpdateStatus records the caller as approver unless the body names one.
func (h *Handler) UpdateStatus(c *gin.Context) {
	actorID := c.GetString("user_id_validated")

	var req TransitionLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	approverID := req.ApproverID
	if approverID == nil || *approverID == "" {
		approverID = &actorID
	}

	resp, err := h.service.Transition(c.Request.Context(), c.Param("id"), TransitionInput{
		Status:     req.Status,
		ApproverID: approverID,
		ActorID:    actorID,
		Comment:    req.Comment,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) Export(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"leave_requests_%s.xlsx\"", time.Now().Format("20060102")))
	c.Data(http.StatusOK, xlsxContentType, data)
}
