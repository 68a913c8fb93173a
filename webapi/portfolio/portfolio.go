package portfolio

import (
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	"github.com/amirasaad/axeria/pkg/middleware"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	paymentsvc "github.com/amirasaad/axeria/pkg/service/payment"
	portfoliosvc "github.com/amirasaad/axeria/pkg/service/portfolio"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

type Services struct {
	Auth      *authsvc.Service
	Portfolio *portfoliosvc.Service
	Payment   *paymentsvc.Service
}

func Routes(app *fiber.App, admin fiber.Router, svc Services, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/plans", protected, ActivePlans(svc))
	app.Post("/portfolios", protected, Invest(svc))
	app.Get("/portfolios", protected, ListMine(svc))
	app.Post("/portfolios/:id/top-up", protected, TopUp(svc))
	app.Post("/portfolios/:id/withdraw", protected, Withdraw(svc))
	app.Post("/portfolios/:id/bot", protected, BuyBot(svc))

	admin.Get("/plans", AllPlans(svc))
	admin.Post("/plans", CreatePlan(svc))
	admin.Put("/plans/:id", UpdatePlan(svc))
	admin.Delete("/plans/:id", DeletePlan(svc))
	admin.Get("/portfolios", List(svc))
	admin.Put("/portfolios/:id", Edit(svc))
}

func ActivePlans(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plans, err := svc.Portfolio.Plans(c.UserContext(), true)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list plans", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Plans", plans)
	}
}

// Invest moves money from the current deposit into a new portfolio.
// @Summary Invest in a plan
// @Tags portfolios
// @Accept json
// @Produce json
// @Param request body InvestRequest true "Investment"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /portfolios [post]
// @Security BearerAuth
func Invest(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[InvestRequest](c)
		if input == nil {
			return err
		}
		pf, err := svc.Portfolio.Invest(c.UserContext(), userID, input.PlanID, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't invest", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Portfolio opened", pf)
	}
}

func ListMine(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		pfs, err := svc.Portfolio.ListForUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list portfolios", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Portfolios", pfs)
	}
}

func TopUp(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid portfolio ID", err, "Portfolio ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		pf, err := svc.Portfolio.TopUp(c.UserContext(), userID, id, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't top up portfolio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Portfolio topped up", pf)
	}
}

// Withdraw returns available funds from a portfolio to the ROI pool.
// @Summary Withdraw from portfolio
// @Tags portfolios
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body AmountRequest true "Amount"
// @Success 200 {object} common.Response
// @Failure 422 {object} common.ProblemDetails
// @Router /portfolios/{id}/withdraw [post]
// @Security BearerAuth
func Withdraw(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid portfolio ID", err, "Portfolio ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		pf, err := svc.Portfolio.Withdraw(c.UserContext(), userID, id, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't withdraw from portfolio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawn from portfolio", pf)
	}
}

// BuyBot records a pending bot purchase for the site bot price.
// @Summary Buy trading bot
// @Tags portfolios
// @Accept json
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param request body BotRequest true "Payment method"
// @Success 201 {object} common.Response
// @Failure 409 {object} common.ProblemDetails
// @Router /portfolios/{id}/bot [post]
// @Security BearerAuth
func BuyBot(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid portfolio ID", err, "Portfolio ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[BotRequest](c)
		if input == nil {
			return err
		}
		p, err := svc.Payment.BuyBot(c.UserContext(), userID, id, input.MethodID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't buy bot", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Bot payment pending approval", p)
	}
}

func AllPlans(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plans, err := svc.Portfolio.Plans(c.UserContext(), false)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list plans", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Plans", plans)
	}
}

func CreatePlan(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[PlanRequest](c)
		if input == nil {
			return err
		}
		plan, err := svc.Portfolio.CreatePlan(c.UserContext(), input.toPlan())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create plan", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Plan created", plan)
	}
}

func UpdatePlan(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid plan ID", err, "Plan ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[PlanRequest](c)
		if input == nil {
			return err
		}
		plan, err := svc.Portfolio.UpdatePlan(c.UserContext(), id, input.toPlan())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update plan", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Plan updated", plan)
	}
}

// DeletePlan removes a plan. Plans still referenced by portfolios are kept
// and the request fails with 409.
func DeletePlan(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid plan ID", err, "Plan ID must be a valid UUID")
		}
		if err := svc.Portfolio.DeletePlan(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete plan", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func List(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pfs, err := svc.Portfolio.List(c.UserContext(), portfolio.Status(c.Query("status")))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list portfolios", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Portfolios", pfs)
	}
}

func Edit(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid portfolio ID", err, "Portfolio ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[EditRequest](c)
		if input == nil {
			return err
		}
		pf, err := svc.Portfolio.Edit(c.UserContext(), id, portfoliosvc.Edit(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update portfolio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Portfolio updated", pf)
	}
}
