package user

import (
	"strconv"

	"github.com/amirasaad/axeria/pkg/config"
	domainuser "github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/middleware"
	"github.com/amirasaad/axeria/pkg/repository"
	authsvc "github.com/amirasaad/axeria/pkg/service/auth"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	txsvc "github.com/amirasaad/axeria/pkg/service/transaction"
	usersvc "github.com/amirasaad/axeria/pkg/service/user"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

type Services struct {
	Auth        *authsvc.Service
	User        *usersvc.Service
	Ledger      *ledgersvc.Service
	Transaction *txsvc.Service
}

func Routes(app *fiber.App, admin fiber.Router, svc Services, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	me := app.Group("/me", protected)
	me.Get("/", GetMe(svc))
	me.Put("/", UpdateMe(svc))
	me.Delete("/", DeleteMe(svc))
	me.Get("/transactions", MyTransactions(svc))
	me.Get("/ledger", MyLedger(svc))

	account := admin.Group("/account")
	account.Put("/password", ChangePassword(svc))
	account.Put("/username", ChangeUsername(svc))
	account.Put("/email", ChangeEmail(svc))

	users := admin.Group("/users")
	users.Get("/", ListUsers(svc))
	users.Get("/:id", GetUser(svc))
	users.Put("/:id", EditUser(svc))
	users.Post("/:id/block", SetBlocked(svc))
	users.Post("/:id/activate", SetActive(svc))
	users.Delete("/:id", DeleteUser(svc))
	users.Get("/:id/reconcile", Reconcile(svc))
}

// GetMe returns the caller's profile and balances.
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /me [get]
// @Security BearerAuth
func GetMe(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		u, err := svc.User.Get(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", u)
	}
}

// UpdateMe updates the caller's profile.
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileInput true "Profile"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /me [put]
// @Security BearerAuth
func UpdateMe(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[UpdateProfileInput](c)
		if input == nil {
			return err
		}
		u, err := svc.User.UpdateProfile(c.UserContext(), userID, usersvc.Profile(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User updated successfully", u)
	}
}

// DeleteMe deactivates the caller's account, removing everything it owns.
// @Summary Deactivate account
// @Tags users
// @Success 204
// @Router /me [delete]
// @Security BearerAuth
func DeleteMe(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		if err := svc.User.Deactivate(c.UserContext(), userID); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't deactivate account", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MyTransactions lists the caller's transaction history, newest first.
// @Summary Transaction history
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Router /me/transactions [get]
// @Security BearerAuth
func MyTransactions(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		txs, err := svc.Transaction.ListForUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", txs)
	}
}

func MyLedger(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		entries, err := svc.Ledger.Entries(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list ledger", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Ledger entries", entries)
	}
}

func ChangePassword(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ChangePasswordInput](c)
		if input == nil {
			return err
		}
		if err := svc.User.ChangePassword(c.UserContext(), userID, input.CurrentPassword, input.NewPassword); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't change password", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Password changed", nil)
	}
}

func ChangeUsername(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ChangeUsernameInput](c)
		if input == nil {
			return err
		}
		u, err := svc.User.ChangeUsername(c.UserContext(), userID, input.Username)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't change username", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Username changed", u)
	}
}

func ChangeEmail(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, svc.Auth)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ChangeEmailInput](c)
		if input == nil {
			return err
		}
		u, err := svc.User.ChangeEmail(c.UserContext(), userID, input.Email)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't change email", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Email changed", u)
	}
}

// ListUsers lists traders. Query flags active and blocked filter when set.
// @Summary List users
// @Tags admin
// @Produce json
// @Param active query bool false "Filter on active"
// @Param blocked query bool false "Filter on blocked"
// @Success 200 {object} common.Response
// @Router /admin/users [get]
// @Security BearerAuth
func ListUsers(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := repository.UserFilter{Role: domainuser.RoleTrader}
		var err error
		if f.Active, err = queryBool(c, "active"); err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err, "active must be a boolean", fiber.StatusBadRequest)
		}
		if f.Blocked, err = queryBool(c, "blocked"); err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err, "blocked must be a boolean", fiber.StatusBadRequest)
		}
		users, err := svc.User.List(c.UserContext(), f)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list users", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users", users)
	}
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func GetUser(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		u, err := svc.User.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", u)
	}
}

// EditUser applies an administrator's edit, including balance corrections.
// @Summary Edit user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body AdminEditInput true "Changes"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /admin/users/{id} [put]
// @Security BearerAuth
func EditUser(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[AdminEditInput](c)
		if input == nil {
			return err
		}
		u, err := svc.User.Edit(c.UserContext(), id, usersvc.AdminEdit(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User updated", u)
	}
}

func SetBlocked(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[FlagInput](c)
		if input == nil {
			return err
		}
		u, err := svc.User.SetBlocked(c.UserContext(), id, input.Value)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User updated", u)
	}
}

func SetActive(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[FlagInput](c)
		if input == nil {
			return err
		}
		u, err := svc.User.SetActive(c.UserContext(), id, input.Value)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User updated", u)
	}
}

func DeleteUser(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		if err := svc.User.Delete(c.UserContext(), id); err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't delete user", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Reconcile compares a user's stored balances with their ledger.
// @Summary Reconcile balances
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Router /admin/users/{id}/reconcile [get]
// @Security BearerAuth
func Reconcile(svc Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID")
		}
		drift, err := svc.Ledger.Reconcile(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't reconcile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Reconciled", ReconcileResult{Clean: len(drift) == 0, Drift: drift})
	}
}
