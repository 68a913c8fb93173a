package withdrawal

import (
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/withdrawal"
	"github.com/amirasaad/axeria/pkg/middleware"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	withdrawalsvc "github.com/amirasaad/axeria/pkg/service/withdrawal"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(
	app *fiber.App,
	admin fiber.Router,
	withdrawalSvc *withdrawalsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/withdrawals", protected, Request(withdrawalSvc, authSvc))
	app.Get("/withdrawals", protected, ListMine(withdrawalSvc, authSvc))

	admin.Get("/withdrawals", List(withdrawalSvc))
	admin.Post("/withdrawals/:id/approve", Approve(withdrawalSvc))
	admin.Post("/withdrawals/:id/reject", Reject(withdrawalSvc))
}

// Request records a pending withdrawal. The site withdrawal charge must be
// covered by the chosen pool.
// @Summary Request withdrawal
// @Tags withdrawals
// @Accept json
// @Produce json
// @Param request body WithdrawalRequest true "Withdrawal"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /withdrawals [post]
// @Security BearerAuth
func Request(withdrawalSvc *withdrawalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[WithdrawalRequest](c)
		if input == nil {
			return err
		}
		w, err := withdrawalSvc.Request(c.UserContext(), userID, withdrawalsvc.RequestInput(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't request withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Withdrawal pending approval", w)
	}
}

func ListMine(withdrawalSvc *withdrawalsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		ws, err := withdrawalSvc.ListForUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list withdrawals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawals", ws)
	}
}

func List(withdrawalSvc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws, err := withdrawalSvc.List(c.UserContext(), withdrawal.Status(c.Query("status")))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list withdrawals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawals", ws)
	}
}

// Approve debits the requested pool and completes the withdrawal.
// @Summary Approve withdrawal
// @Tags admin
// @Produce json
// @Param id path string true "Withdrawal ID"
// @Success 200 {object} common.Response
// @Failure 409 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /admin/withdrawals/{id}/approve [post]
// @Security BearerAuth
func Approve(withdrawalSvc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid withdrawal ID", err, "Withdrawal ID must be a valid UUID")
		}
		w, err := withdrawalSvc.Approve(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't approve withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal approved", w)
	}
}

func Reject(withdrawalSvc *withdrawalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid withdrawal ID", err, "Withdrawal ID must be a valid UUID")
		}
		w, err := withdrawalSvc.Reject(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't reject withdrawal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal rejected", w)
	}
}
