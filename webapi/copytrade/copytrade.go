package copytrade

import (
	"strconv"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/middleware"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	copytradesvc "github.com/amirasaad/axeria/pkg/service/copytrade"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(
	app *fiber.App,
	admin fiber.Router,
	copySvc *copytradesvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/traders", protected, AvailableTraders(copySvc, authSvc))
	app.Post("/copy-trades", protected, Copy(copySvc, authSvc))
	app.Get("/copy-trades", protected, ListMine(copySvc, authSvc))
	app.Post("/copy-trades/:id/top-up", protected, TopUp(copySvc, authSvc))
	app.Post("/copy-trades/:id/withdraw", protected, Withdraw(copySvc, authSvc))

	admin.Get("/traders", Traders(copySvc))
	admin.Post("/traders", CreateTrader(copySvc))
	admin.Put("/traders/:id", UpdateTrader(copySvc))
	admin.Delete("/traders/:id", DeleteTrader(copySvc))
	admin.Get("/copy-trades", List(copySvc))
	admin.Put("/copy-trades/:id/active", SetActive(copySvc))
	admin.Put("/copy-trades/:id/progress", SetProgress(copySvc))
}

// AvailableTraders lists verified traders the caller is not already copying.
// @Summary Available traders
// @Tags copy-trading
// @Produce json
// @Success 200 {object} common.Response
// @Router /traders [get]
// @Security BearerAuth
func AvailableTraders(copySvc *copytradesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		traders, err := copySvc.AvailableTraders(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list traders", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Traders", traders)
	}
}

// Copy starts copying a trader. The amount plus the trader's fee is taken
// from the current deposit.
// @Summary Copy trader
// @Tags copy-trading
// @Accept json
// @Produce json
// @Param request body CopyRequest true "Copy"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /copy-trades [post]
// @Security BearerAuth
func Copy(copySvc *copytradesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CopyRequest](c)
		if input == nil {
			return err
		}
		ct, err := copySvc.Copy(c.UserContext(), userID, input.TraderID, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't copy trader", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Copy trade started", ct)
	}
}

func ListMine(copySvc *copytradesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		cts, err := copySvc.ListForUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list copy trades", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Copy trades", cts)
	}
}

func TopUp(copySvc *copytradesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid copy trade ID", err, "Copy trade ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		ct, err := copySvc.TopUp(c.UserContext(), userID, id, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't top up copy trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Copy trade topped up", ct)
	}
}

func Withdraw(copySvc *copytradesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid copy trade ID", err, "Copy trade ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		ct, err := copySvc.Withdraw(c.UserContext(), userID, id, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't withdraw from copy trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawn from copy trade", ct)
	}
}

// Traders lists every trader; ?verified=true keeps verified ones only.
func Traders(copySvc *copytradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verifiedOnly, _ := strconv.ParseBool(c.Query("verified"))
		traders, err := copySvc.Traders(c.UserContext(), verifiedOnly)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list traders", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Traders", traders)
	}
}

func CreateTrader(copySvc *copytradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TraderRequest](c)
		if input == nil {
			return err
		}
		t, err := copySvc.CreateTrader(c.UserContext(), input.toInput())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create trader", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Trader created", t)
	}
}

func UpdateTrader(copySvc *copytradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid trader ID", err, "Trader ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[TraderRequest](c)
		if input == nil {
			return err
		}
		t, err := copySvc.UpdateTrader(c.UserContext(), id, input.toInput())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update trader", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Trader updated", t)
	}
}

func DeleteTrader(copySvc *copytradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid trader ID", err, "Trader ID must be a valid UUID")
		}
		if err := copySvc.DeleteTrader(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete trader", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func List(copySvc *copytradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		activeOnly, _ := strconv.ParseBool(c.Query("active"))
		cts, err := copySvc.List(c.UserContext(), activeOnly)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list copy trades", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Copy trades", cts)
	}
}

func SetActive(copySvc *copytradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid copy trade ID", err, "Copy trade ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[ActiveRequest](c)
		if input == nil {
			return err
		}
		ct, err := copySvc.SetActive(c.UserContext(), id, input.Active)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update copy trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Copy trade updated", ct)
	}
}

// SetProgress overwrites the trade progress; the profit follows from it.
// @Summary Set copy trade progress
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Copy trade ID"
// @Param request body ProgressRequest true "Progress"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /admin/copy-trades/{id}/progress [put]
// @Security BearerAuth
func SetProgress(copySvc *copytradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid copy trade ID", err, "Copy trade ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[ProgressRequest](c)
		if input == nil {
			return err
		}
		ct, err := copySvc.SetProgress(c.UserContext(), id, input.Progress)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update copy trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Copy trade updated", ct)
	}
}
