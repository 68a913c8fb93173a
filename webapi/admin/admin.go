package admin

import (
	"github.com/amirasaad/axeria/pkg/domain/site"
	adminsvc "github.com/amirasaad/axeria/pkg/service/admin"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(admin fiber.Router, adminSvc *adminsvc.Service) {
	admin.Get("/dashboard", Dashboard(adminSvc))
	admin.Get("/site-config", SiteConfig(adminSvc))
	admin.Put("/site-config", UpdateSiteConfig(adminSvc))
}

// Dashboard returns the admin landing figures.
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /admin/dashboard [get]
// @Security BearerAuth
func Dashboard(adminSvc *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := adminSvc.Dashboard(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't load dashboard", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Dashboard", d)
	}
}

func SiteConfig(adminSvc *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg, err := adminSvc.SiteConfig(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't load site config", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Site config", cfg)
	}
}

func UpdateSiteConfig(adminSvc *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SiteConfigRequest](c)
		if input == nil {
			return err
		}
		cfg, err := adminSvc.UpdateSiteConfig(c.UserContext(), site.Config(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't update site config", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Site config updated", cfg)
	}
}
