package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/pkg/cache"
	"storefront_backend/pkg/utils/image"
	"storefront_backend/pkg/utils/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const imageOrder = `"order" ASC`

type ProductInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=20000"`
	Price       float64        `json:"price" validate:"gt=0"`
	Currency    string         `json:"currency" validate:"omitempty,oneof=USD EUR GBP JMD CAD"`
	SKU         string         `json:"sku" validate:"max=64"`
	BrandID     string         `json:"brand_id" validate:"omitempty,uuid"`
	Published   bool           `json:"published"`
	Attributes  datatypes.JSON `json:"attributes"`
}

type ProductController struct {
	store    *repository.Store
	cache    *cache.Client
	uploader storage.Uploader
	images   image.Options
}

// NewProductController accepts a nil cache and a nil uploader; without an
// uploader image endpoints answer 503.
func NewProductController(store *repository.Store, cache *cache.Client, uploader storage.Uploader, images image.Options) *ProductController {
	return &ProductController{store: store, cache: cache, uploader: uploader, images: images}
}

type productPage struct {
	Data  []model.Product `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

var productSorts = map[string]string{
	"newest":     "created_at DESC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
}

// ListProducts lists published products. Supports ?brand=<slug>
// ?min_price= ?max_price= ?q= ?sort=newest|price_asc|price_desc and
// pagination.
func (p *ProductController) ListProducts(c *fiber.Ctx) error {
	filter := repository.Filter{Where: map[string]interface{}{"published": true}}

	order, ok := productSorts[c.Query("sort", "newest")]
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid sort value")
	}
	filter.Order = order

	for _, bound := range []struct {
		param string
		cond  string
	}{
		{"min_price", "price >= ?"},
		{"max_price", "price <= ?"},
	} {
		raw := c.Query(bound.param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid "+bound.param)
		}
		cond := bound.cond
		filter.Scopes = append(filter.Scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(cond, value)
		})
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		filter.Scopes = append(filter.Scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER(name) LIKE ?", pattern)
		})
	}

	limit, offset, page := pagination(c)
	key := "catalog:products:" + string(c.Request().URI().QueryString())

	result, err := cache.Remember(c.UserContext(), p.cache, key, func() (productPage, error) {
		if slug := c.Query("brand"); slug != "" {
			brand, err := p.store.Brands.FirstByField(c.UserContext(), "slug", slug)
			if errors.Is(err, repository.ErrNotFound) {
				return productPage{Data: []model.Product{}, Page: page, Limit: limit}, nil
			}
			if err != nil {
				return productPage{}, err
			}
			filter.Where["brand_id"] = brand.ID
		}

		total, err := p.store.Products.Count(c.UserContext(), filter)
		if err != nil {
			return productPage{}, err
		}

		filter.Limit, filter.Offset = limit, offset
		products, err := p.store.Products.With("Brand").WithOrdered("Images", imageOrder).Search(c.UserContext(), filter)
		if err != nil {
			return productPage{}, err
		}
		return productPage{Data: products, Total: total, Page: page, Limit: limit}, nil
	})
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (p *ProductController) GetProductBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	product, err := cache.Remember(c.UserContext(), p.cache, "catalog:product:"+slug, func() (*model.Product, error) {
		product, err := p.store.Products.With("Brand").WithOrdered("Images", imageOrder).FirstByField(c.UserContext(), "slug", slug)
		if err != nil {
			return nil, err
		}
		if !product.Published {
			return nil, repository.ErrNotFound
		}
		return product, nil
	})
	if err != nil {
		return storeError(err, "Product not found")
	}
	return c.JSON(product)
}

// ListAllProducts is the back-office listing, drafts included.
func (p *ProductController) ListAllProducts(c *fiber.Ctx) error {
	filter := repository.Filter{Order: "created_at DESC"}
	if published := c.Query("published"); published != "" {
		filter.Where = map[string]interface{}{"published": published == "true"}
	}

	total, err := p.store.Products.Count(c.UserContext(), filter)
	if err != nil {
		return err
	}

	limit, offset, page := pagination(c)
	filter.Limit, filter.Offset = limit, offset

	products, err := p.store.Products.With("Brand").WithOrdered("Images", imageOrder).Search(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(productPage{Data: products, Total: total, Page: page, Limit: limit})
}

func (p *ProductController) GetProduct(c *fiber.Ctx) error {
	product, err := p.store.Products.With("Brand").WithOrdered("Images", imageOrder).GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Product not found")
	}
	return c.JSON(product)
}

// apply copies input onto product, checking the brand reference.
func (p *ProductController) apply(c *fiber.Ctx, product *model.Product, input *ProductInput) error {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.Currency = model.CurrencyUSD
	if input.Currency != "" {
		product.Currency = model.Currency(input.Currency)
	}
	product.SKU = input.SKU
	product.Published = input.Published
	product.Attributes = input.Attributes

	product.BrandID = nil
	if input.BrandID != "" {
		if _, err := p.store.Brands.GetByID(c.UserContext(), input.BrandID); err != nil {
			return storeError(err, "Brand not found")
		}
		brandID := input.BrandID
		product.BrandID = &brandID
	}
	return nil
}

func (p *ProductController) CreateProduct(c *fiber.Ctx) error {
	input := new(ProductInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	product := new(model.Product)
	if err := p.apply(c, product, input); err != nil {
		return err
	}
	if err := p.store.Products.Create(c.UserContext(), product); err != nil {
		return err
	}

	invalidateCatalog(c, p.cache)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct keeps the slug so existing links stay valid. Leads scored
// earlier keep their scores when the price changes.
func (p *ProductController) UpdateProduct(c *fiber.Ctx) error {
	input := new(ProductInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	product, err := p.store.Products.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Product not found")
	}
	if err := p.apply(c, product, input); err != nil {
		return err
	}
	if err := p.store.Products.Update(c.UserContext(), product); err != nil {
		return err
	}

	invalidateCatalog(c, p.cache)
	return c.JSON(product)
}

// DeleteProduct removes the product, its image rows and their stored files.
func (p *ProductController) DeleteProduct(c *fiber.Ctx) error {
	product, err := p.store.Products.With("Images").GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Product not found")
	}

	if err := p.store.Products.Delete(c.UserContext(), product.ID); err != nil {
		return storeError(err, "Product not found")
	}

	if p.uploader != nil {
		for _, img := range product.Images {
			if err := p.uploader.Delete(c.UserContext(), img.URL); err != nil {
				log.Printf("Could not delete image %s of product %s: %v", img.URL, product.ID, err)
			}
		}
	}

	invalidateCatalog(c, p.cache)
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
