package kyc

import (
	"path"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/kyc"
	"github.com/amirasaad/axeria/pkg/middleware"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	kycsvc "github.com/amirasaad/axeria/pkg/service/kyc"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// FormField is the multipart field holding the document.
const FormField = "document"

func Routes(
	app *fiber.App,
	admin fiber.Router,
	kycSvc *kycsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/kyc", protected, Submit(kycSvc, authSvc))
	app.Get("/kyc", protected, Mine(kycSvc, authSvc))

	admin.Get("/kyc", List(kycSvc))
	admin.Get("/kyc/:id/document", Document(kycSvc))
	admin.Post("/kyc/:id/approve", Approve(kycSvc))
	admin.Post("/kyc/:id/reject", Reject(kycSvc))
}

// Submit uploads an identity document and puts the caller's KYC record
// back in review.
// @Summary Submit KYC document
// @Tags kyc
// @Accept mpfd
// @Produce json
// @Param document formData file true "PNG, JPEG or PDF"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /kyc [post]
// @Security BearerAuth
func Submit(kycSvc *kycsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		fh, err := c.FormFile(FormField)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Missing document", domain.ErrValidation, "multipart field \"document\" is required")
		}
		f, err := fh.Open()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't read document", err)
		}
		defer func() { _ = f.Close() }()

		v, err := kycSvc.Submit(c.UserContext(), userID, kycsvc.Document{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't submit document", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Document submitted for review", v)
	}
}

func Mine(kycSvc *kycsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		v, err := kycSvc.Get(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "No KYC submission", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC status", v)
	}
}

func List(kycSvc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vs, err := kycSvc.List(c.UserContext(), kyc.Status(c.Query("status")))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list KYC submissions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC submissions", vs)
	}
}

// Document streams the stored file back to the reviewer.
func Document(kycSvc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid KYC ID", err, "KYC ID must be a valid UUID")
		}
		rc, v, err := kycSvc.OpenDocument(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Document not found", err)
		}
		c.Set(fiber.HeaderContentType, contentType(v.Document))
		c.Set(fiber.HeaderContentDisposition, `inline; filename="`+path.Base(v.Document)+`"`)
		return c.SendStream(rc)
	}
}

func contentType(key string) string {
	ext := path.Ext(key)
	for ct, e := range kyc.AllowedContentTypes {
		if e == ext {
			return ct
		}
	}
	return fiber.MIMEOctetStream
}

func Approve(kycSvc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid KYC ID", err, "KYC ID must be a valid UUID")
		}
		v, err := kycSvc.Approve(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't approve document", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Document approved", v)
	}
}

// Reject refuses a document.
// @Summary Reject KYC document
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "KYC ID"
// @Param request body RejectRequest true "Reason"
// @Success 200 {object} common.Response
// @Failure 409 {object} common.ProblemDetails
// @Router /admin/kyc/{id}/reject [post]
// @Security BearerAuth
func Reject(kycSvc *kycsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid KYC ID", err, "KYC ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[RejectRequest](c)
		if input == nil {
			return err
		}
		v, err := kycSvc.Reject(c.UserContext(), id, input.Reason)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't reject document", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Document rejected", v)
	}
}
