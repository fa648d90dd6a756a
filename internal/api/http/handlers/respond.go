package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/validation"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

func respond(c *fiber.Ctx, status int, data, meta interface{}) error {
	return c.Status(status).JSON(dto.Response{
		Success: true,
		Data:    data,
		Meta:    meta,
		Errors:  []dto.ErrorItem{},
	})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return respond(c, fiber.StatusOK, data, nil)
}

// parseBody decodes the request body. An empty body decodes to the zero
// value so that field validation reports what is missing.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewBadRequest("INVALID_PAYLOAD", "request body could not be parsed")
	}
	return nil
}

func queryInt(v *validation.Validator, c *fiber.Ctx, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Field(name, raw).Custom(false, "integer", name+" must be an integer")
		return fallback
	}
	return n
}

func queryFloat(v *validation.Validator, c *fiber.Ctx, name string) *float64 {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		v.Field(name, raw).Custom(false, "number", name+" must be a non-negative number")
		return nil
	}
	return &f
}

func queryBool(v *validation.Validator, c *fiber.Ctx, name string) *bool {
	raw := strings.ToLower(strings.TrimSpace(c.Query(name)))
	var b bool
	switch raw {
	case "":
		return nil
	case "1", "true", "yes":
		b = true
	case "0", "false", "no":
		b = false
	default:
		v.Field(name, raw).Custom(false, "boolean", name+" must be true or false")
		return nil
	}
	return &b
}

func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func userResponse(user *domain.User) *dto.UserResponse {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return &dto.UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Roles:        roles,
		RegisteredAt: user.RegisteredAt,
	}
}

func categoryResponse(category domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		Slug:     category.Slug,
		ParentID: category.ParentID,
		Count:    category.Count,
	}
}

func productResponse(p *domain.Product, inWishlist *bool) dto.ProductResponse {
	categories := make([]dto.CategoryResponse, 0, len(p.Categories))
	for _, category := range p.Categories {
		categories = append(categories, categoryResponse(category))
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return dto.ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		SKU:              p.SKU,
		Type:             p.Type,
		Featured:         p.Featured,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		RegularPrice:     p.RegularPrice,
		SalePrice:        p.SalePrice,
		OnSale:           p.OnSale(),
		StockStatus:      string(p.StockStatus),
		StockQuantity:    p.StockQuantity,
		InStock:          p.InStock(),
		AverageRating:    p.AverageRating,
		RatingCount:      p.RatingCount,
		Images:           images,
		Categories:       categories,
		InWishlist:       inWishlist,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func productSummary(p *domain.Product, inWishlist *bool) dto.ProductSummary {
	categories := make([]string, 0, len(p.Categories))
	for _, category := range p.Categories {
		categories = append(categories, category.Slug)
	}
	summary := dto.ProductSummary{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		Price:      p.Price,
		OnSale:     p.OnSale(),
		InStock:    p.InStock(),
		Categories: categories,
		InWishlist: inWishlist,
	}
	if len(p.Images) > 0 {
		summary.Image = p.Images[0]
	}
	return summary
}
