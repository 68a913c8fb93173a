package market

import (
	marketsvc "github.com/amirasaad/axeria/pkg/service/market"
	"github.com/amirasaad/axeria/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, admin fiber.Router, marketSvc *marketsvc.Service) {
	app.Get("/market", Catalog(marketSvc))
	admin.Post("/market/categories", CreateCategory(marketSvc))
	admin.Post("/market/categories/:id/assets", CreateAsset(marketSvc))
}

// Catalog lists categories with their assets.
// @Summary Market catalog
// @Tags market
// @Produce json
// @Success 200 {object} common.Response
// @Router /market [get]
func Catalog(marketSvc *marketsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := marketSvc.ListCategories(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list market", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Market", categories)
	}
}

func CreateCategory(marketSvc *marketsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CategoryRequest](c)
		if input == nil {
			return err
		}
		cat, err := marketSvc.CreateCategory(c.UserContext(), input.Name)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Category created", cat)
	}
}

func CreateAsset(marketSvc *marketsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categoryID, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid category ID", err, "Category ID must be a valid UUID")
		}
		input, err := common.BindAndValidate[AssetRequest](c)
		if input == nil {
			return err
		}
		asset, err := marketSvc.CreateAsset(c.UserContext(), categoryID, marketsvc.AssetInput(*input))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create asset", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Asset created", asset)
	}
}
