package payment

import (
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/amirasaad/axeria/pkg/middleware"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	paymentsvc "github.com/amirasaad/axeria/pkg/service/payment"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(
	app *fiber.App,
	admin fiber.Router,
	paymentSvc *paymentsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/payment-methods", protected, ListActiveMethods(paymentSvc))
	app.Post("/payments", protected, Fund(paymentSvc, authSvc))
	app.Get("/payments", protected, ListMine(paymentSvc, authSvc))
	app.Get("/payments/:ref", protected, Invoice(paymentSvc, authSvc))

	admin.Get("/payments", List(paymentSvc))
	admin.Post("/payments/:id/approve", Approve(paymentSvc))
	admin.Post("/payments/:id/decline", Decline(paymentSvc))

	admin.Get("/payment-methods", ListMethods(paymentSvc))
	admin.Post("/payment-methods", CreateMethod(paymentSvc))
	admin.Put("/payment-methods/:id", UpdateMethod(paymentSvc))
	admin.Delete("/payment-methods/:id", DeleteMethod(paymentSvc))
}

// ListActiveMethods returns the methods traders can pay with.
// @Summary Payment methods
// @Tags payments
// @Produce json
// @Success 200 {object} common.Response
// @Router /payment-methods [get]
// @Security BearerAuth
func ListActiveMethods(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		methods, err := paymentSvc.Methods(c.UserContext(), true)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list payment methods", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment methods", methods)
	}
}

// Fund records a pending deposit. The balance moves only when an
// administrator approves the payment.
// @Summary Fund account
// @Tags payments
// @Accept json
// @Produce json
// @Param request body FundRequest true "Deposit"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /payments [post]
// @Security BearerAuth
func Fund(paymentSvc *paymentsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[FundRequest](c)
		if input == nil {
			return err
		}
		p, err := paymentSvc.Fund(c.UserContext(), userID, input.Amount, input.MethodID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't record payment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Payment pending approval", p)
	}
}

func ListMine(paymentSvc *paymentsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		payments, err := paymentSvc.ListForUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list payments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payments", payments)
	}
}

// Invoice returns one of the caller's payments by reference.
// @Summary Invoice
// @Tags payments
// @Produce json
// @Param ref path string true "Payment reference"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /payments/{ref} [get]
// @Security BearerAuth
func Invoice(paymentSvc *paymentsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		ref, err := common.ParseID(c, "ref")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid reference", err, "Reference must be a valid UUID")
		}
		p, err := paymentSvc.Invoice(c.UserContext(), userID, ref)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Payment not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Invoice", p)
	}
}

// List returns payments, filtered by ?status= when given.
// @Summary List payments
// @Tags admin
// @Produce json
// @Param status query string false "pending, completed or failed"
// @Success 200 {object} common.Response
// @Router /admin/payments [get]
// @Security BearerAuth
func List(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payments, err := paymentSvc.List(c.UserContext(), payment.Status(c.Query("status")))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list payments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payments", payments)
	}
}

// Approve credits a pending payment to its owner.
// @Summary Approve payment
// @Tags admin
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /admin/payments/{id}/approve [post]
// @Security BearerAuth
func Approve(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid payment ID", err, "Payment ID must be a valid UUID")
		}
		p, err := paymentSvc.Approve(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't approve payment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment approved", p)
	}
}

func Decline(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid payment ID", err, "Payment ID must be a valid UUID")
		}
		p, err := paymentSvc.Decline(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't decline payment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment declined", p)
	}
}

func ListMethods(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		methods, err := paymentSvc.Methods(c.UserContext(), false)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list payment methods", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment methods", methods)
	}
}

func CreateMethod(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[MethodRequest](c)
		if input == nil {
			return err
		}
		m, err := paymentSvc.CreateMethod(c.UserContext(), paymentsvc.MethodInput(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create payment method", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Payment method created", m)
	}
}

func UpdateMethod(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid payment method ID", err, "ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[MethodRequest](c)
		if input == nil {
			return err
		}
		m, err := paymentSvc.UpdateMethod(c.UserContext(), id, paymentsvc.MethodInput(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update payment method", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment method updated", m)
	}
}

func DeleteMethod(paymentSvc *paymentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid payment method ID", err, "ID must be a valid UUID")
		}
		if err := paymentSvc.DeleteMethod(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete payment method", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
