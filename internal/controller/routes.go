package controller

import (
	"storefront_backend/internal/middleware"
	"storefront_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every controller the API mounts.
type Handlers struct {
	Auth      *AuthController
	Brands    *BrandController
	Products  *ProductController
	Wishlists *WishlistController
	Leads     *LeadController
}

func SetupRoutes(app *fiber.App, h *Handlers, tokens *jwt.Manager) {
	api := app.Group("/api")

	requireAuth := middleware.AuthMiddleware(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)
	customerOnly := middleware.RequireRole(jwt.RoleCustomer)
	staffOnly := middleware.RequireRole(jwt.RoleAdmin, jwt.RoleEditor)
	adminOnly := middleware.RequireRole(jwt.RoleAdmin)

	// Back-office auth
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Get("/me", requireAuth, staffOnly, h.Auth.GetMe)

	// Storefront accounts
	customers := api.Group("/customers")
	customers.Post("/register", h.Auth.RegisterCustomer)
	customers.Post("/login", h.Auth.LoginCustomer)
	customers.Get("/me", requireAuth, customerOnly, h.Auth.GetCustomerMe)
	customers.Get("/me/wishlists", requireAuth, customerOnly, h.Wishlists.GetMyWishlists)

	// Public catalog
	api.Get("/brands", h.Brands.ListBrands)
	api.Get("/brands/:slug", h.Brands.GetBrandBySlug)
	api.Get("/products", h.Products.ListProducts)
	api.Get("/products/:slug", h.Products.GetProductBySlug)

	// Wishlists
	wishlists := api.Group("/wishlists", optionalAuth)
	wishlists.Post("/", h.Wishlists.CreateWishlist)
	wishlists.Get("/:token", h.Wishlists.GetWishlist)
	wishlists.Post("/:token/items", h.Wishlists.AddItem)
	wishlists.Delete("/:token/items/:product_id", h.Wishlists.RemoveItem)
	wishlists.Post("/:token/checkout", h.Leads.CheckoutWishlist)

	// Contact form
	api.Post("/leads", optionalAuth, h.Leads.CreateLead)

	admin := api.Group("/admin", requireAuth, staffOnly)

	brands := admin.Group("/brands")
	brands.Post("/", h.Brands.CreateBrand)
	brands.Put("/:id", h.Brands.UpdateBrand)
	brands.Delete("/:id", adminOnly, h.Brands.DeleteBrand)

	products := admin.Group("/products")
	products.Get("/", h.Products.ListAllProducts)
	products.Post("/", h.Products.CreateProduct)
	products.Get("/:id", h.Products.GetProduct)
	products.Put("/:id", h.Products.UpdateProduct)
	products.Delete("/:id", adminOnly, h.Products.DeleteProduct)
	products.Post("/:id/images", h.Products.UploadProductImage)
	products.Delete("/:id/images/:image_id", h.Products.DeleteProductImage)

	leads := admin.Group("/leads")
	leads.Get("/", h.Leads.ListLeads)
	leads.Get("/stats", h.Leads.GetLeadStats)
	leads.Get("/:id", h.Leads.GetLead)
	leads.Get("/:id/score", h.Leads.GetLeadScore)
	leads.Put("/:id/status", h.Leads.UpdateLeadStatus)
	leads.Put("/:id/assign", h.Leads.AssignLead)
	leads.Post("/:id/notes", h.Leads.AddNote)
	leads.Delete("/:id", adminOnly, h.Leads.DeleteLead)
}
