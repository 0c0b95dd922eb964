package v1

import (
	"net/http"

	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, guards ...gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", append(guards, handler.SubmitContact)...)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates the field-set and emails it to the site owner. Accepts JSON or form-encoded bodies.
// @Tags         contact
// @Accept       json,x-www-form-urlencoded,mpfd
// @Produce      json
// @Param        contact  body      domain.ContactSubmission  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactSubmission
	if err := c.ShouldBind(&req); err != nil {
		// Unreadable bodies fail the same gate as empty fields.
		_ = c.Error(err)
		response.Dispatch(c, http.StatusBadRequest, domain.InvalidResult())
		return
	}

	result := h.contactUC.Dispatch(c.Request.Context(), &req)
	response.Dispatch(c, statusFor(result), result)
}

func statusFor(result domain.DispatchResult) int {
	switch result.Outcome {
	case domain.OutcomeSucceeded:
		return http.StatusOK
	case domain.OutcomeInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
