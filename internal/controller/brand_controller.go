package controller

import (
	"log"
	"strings"

	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/pkg/cache"

	"github.com/gofiber/fiber/v2"
)

const catalogCachePattern = "catalog:*"

type BrandInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
	Website     string `json:"website" validate:"omitempty,url"`
}

type BrandController struct {
	store *repository.Store
	cache *cache.Client
}

// NewBrandController accepts a nil cache.
func NewBrandController(store *repository.Store, cache *cache.Client) *BrandController {
	return &BrandController{store: store, cache: cache}
}

// invalidateCatalog drops every cached public catalog response.
func invalidateCatalog(c *fiber.Ctx, client *cache.Client) {
	if err := client.DeletePattern(c.UserContext(), catalogCachePattern); err != nil {
		log.Printf("Could not invalidate catalog cache: %v", err)
	}
}

func (b *BrandController) ListBrands(c *fiber.Ctx) error {
	brands, err := cache.Remember(c.UserContext(), b.cache, "catalog:brands", func() ([]model.Brand, error) {
		return b.store.Brands.Search(c.UserContext(), repository.Filter{Order: "name ASC"})
	})
	if err != nil {
		return err
	}
	return c.JSON(brands)
}

type brandPage struct {
	Brand    *model.Brand    `json:"brand"`
	Products []model.Product `json:"products"`
}

// GetBrandBySlug returns a brand with its published products.
func (b *BrandController) GetBrandBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	page, err := cache.Remember(c.UserContext(), b.cache, "catalog:brand:"+slug, func() (brandPage, error) {
		brand, err := b.store.Brands.FirstByField(c.UserContext(), "slug", slug)
		if err != nil {
			return brandPage{}, err
		}
		products, err := b.store.Products.WithOrdered("Images", `"order" ASC`).Search(c.UserContext(), repository.Filter{
			Where: map[string]interface{}{"brand_id": brand.ID, "published": true},
			Order: "created_at DESC",
		})
		if err != nil {
			return brandPage{}, err
		}
		return brandPage{Brand: brand, Products: products}, nil
	})
	if err != nil {
		return storeError(err, "Brand not found")
	}
	return c.JSON(page)
}

func (b *BrandController) CreateBrand(c *fiber.Ctx) error {
	input := new(BrandInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	brand := &model.Brand{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		LogoURL:     input.LogoURL,
		Website:     input.Website,
	}
	if err := b.store.Brands.Create(c.UserContext(), brand); err != nil {
		return err
	}

	invalidateCatalog(c, b.cache)
	return c.Status(fiber.StatusCreated).JSON(brand)
}

// UpdateBrand keeps the slug so existing links stay valid.
func (b *BrandController) UpdateBrand(c *fiber.Ctx) error {
	input := new(BrandInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	brand, err := b.store.Brands.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Brand not found")
	}

	brand.Name = strings.TrimSpace(input.Name)
	brand.Description = input.Description
	brand.LogoURL = input.LogoURL
	brand.Website = input.Website
	if err := b.store.Brands.Update(c.UserContext(), brand); err != nil {
		return err
	}

	invalidateCatalog(c, b.cache)
	return c.JSON(brand)
}

func (b *BrandController) DeleteBrand(c *fiber.Ctx) error {
	if err := b.store.Brands.Delete(c.UserContext(), c.Params("id")); err != nil {
		return storeError(err, "Brand not found")
	}

	invalidateCatalog(c, b.cache)
	return c.JSON(fiber.Map{
		"message": "Brand deleted successfully",
	})
}
