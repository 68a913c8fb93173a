package livetrade

import (
	"time"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/middleware"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	livetradesvc "github.com/amirasaad/axeria/pkg/service/livetrade"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func Routes(
	app *fiber.App,
	admin fiber.Router,
	liveSvc *livetradesvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	app.Get("/live-trades", middleware.JwtProtected(cfg.Auth.Jwt), ListMine(liveSvc, authSvc))

	admin.Get("/users/:id/live-trades", ListForUser(liveSvc))
	admin.Post("/users/:id/live-trades", Open(liveSvc))
	admin.Get("/live-trades/:id", Get(liveSvc))
	admin.Put("/live-trades/:id", Edit(liveSvc))
	admin.Delete("/live-trades/:id", Delete(liveSvc))
	admin.Post("/live-trades/settle", Settle(liveSvc))
}

// ListMine returns the caller's live trades.
// @Summary Live trades
// @Tags live-trades
// @Produce json
// @Success 200 {object} common.Response
// @Router /live-trades [get]
// @Security BearerAuth
func ListMine(liveSvc *livetradesvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		trades, err := liveSvc.ListForUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list live trades", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Live trades", trades)
	}
}

func ListForUser(liveSvc *livetradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		trades, err := liveSvc.ListForUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list live trades", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Live trades", trades)
	}
}

// Open starts a live trade for a user, staked from their current deposit.
// @Summary Open live trade
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body OpenRequest true "Trade"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /admin/users/{id}/live-trades [post]
// @Security BearerAuth
func Open(liveSvc *livetradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[OpenRequest](c)
		if input == nil {
			return err
		}
		in, err := input.toInput()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid interval", err, "Interval must be a positive duration like 15m")
		}
		trade, err := liveSvc.Open(c.UserContext(), userID, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't open live trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Live trade opened", trade)
	}
}

func Get(liveSvc *livetradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid live trade ID", err, "Live trade ID must be a valid UUID")
		}
		trade, err := liveSvc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Live trade not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Live trade", trade)
	}
}

func Edit(liveSvc *livetradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid live trade ID", err, "Live trade ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[EditRequest](c)
		if input == nil {
			return err
		}
		trade, err := liveSvc.Edit(c.UserContext(), id, livetradesvc.Edit(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update live trade", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Live trade updated", trade)
	}
}

func Delete(liveSvc *livetradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid live trade ID", err, "Live trade ID must be a valid UUID")
		}
		if err := liveSvc.Delete(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete live trade", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Settle closes every expired open trade and applies its result.
// @Summary Settle live trades
// @Tags admin
// @Accept json
// @Produce json
// @Param request body SettleRequest false "Optional user filter"
// @Success 200 {object} common.Response
// @Router /admin/live-trades/settle [post]
// @Security BearerAuth
func Settle(liveSvc *livetradesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input SettleRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&input); err != nil {
				return common.ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
			}
		}
		userID := uuid.Nil
		if input.UserID != nil {
			userID = *input.UserID
		}
		settled, err := liveSvc.Settle(c.UserContext(), userID, time.Now().UTC())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't settle live trades", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Live trades settled", settled)
	}
}
