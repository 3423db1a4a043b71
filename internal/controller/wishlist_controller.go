package controller

import (
	"strings"

	"storefront_backend/internal/middleware"
	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type WishlistInput struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email" validate:"omitempty,email"`
}

type WishlistItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// WishlistController serves shareable wishlists. Anyone holding the share
// token can read and edit the wishlist.
type WishlistController struct {
	store *repository.Store
}

func NewWishlistController(store *repository.Store) *WishlistController {
	return &WishlistController{store: store}
}

// wishlistView is a wishlist with its products resolved.
type wishlistView struct {
	*model.Wishlist
	Products []model.Product `json:"products"`
}

func (w *WishlistController) view(c *fiber.Ctx, wishlist *model.Wishlist) (wishlistView, error) {
	view := wishlistView{Wishlist: wishlist, Products: []model.Product{}}
	if len(wishlist.Items) == 0 {
		return view, nil
	}

	ids := make([]string, 0, len(wishlist.Items))
	for _, item := range wishlist.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := w.store.Products.WithOrdered("Images", imageOrder).Search(c.UserContext(), repository.Filter{
		Where: map[string]interface{}{"id": ids},
	})
	if err != nil {
		return view, err
	}

	byID := make(map[string]model.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	for _, item := range wishlist.Items {
		if product, ok := byID[item.ProductID]; ok {
			view.Products = append(view.Products, product)
		}
	}
	return view, nil
}

// CreateWishlist starts a wishlist, owned by the caller when a customer
// token is present.
func (w *WishlistController) CreateWishlist(c *fiber.Ctx) error {
	input := new(WishlistInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	wishlist := &model.Wishlist{
		Name:       strings.TrimSpace(input.Name),
		Email:      normalizeEmail(input.Email),
		CustomerID: middleware.CurrentCustomerID(c),
		Items:      []model.WishlistItem{},
	}
	if wishlist.Name == "" {
		wishlist.Name = "My wishlist"
	}
	if wishlist.CustomerID != "" && wishlist.Email == "" {
		wishlist.Email = middleware.CurrentUser(c).Email
	}

	if err := w.store.Wishlists.Create(c.UserContext(), wishlist); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(wishlist)
}

func (w *WishlistController) GetMyWishlists(c *fiber.Ctx) error {
	wishlists, err := w.store.WishlistWithItems().Search(c.UserContext(), repository.Filter{
		Where: map[string]interface{}{"customer_id": middleware.CurrentCustomerID(c)},
		Order: "created_at DESC",
	})
	if err != nil {
		return err
	}
	return c.JSON(wishlists)
}

func (w *WishlistController) GetWishlist(c *fiber.Ctx) error {
	wishlist, err := w.store.WishlistWithItems().FirstByField(c.UserContext(), "share_token", c.Params("token"))
	if err != nil {
		return storeError(err, "Wishlist not found")
	}

	view, err := w.view(c, wishlist)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// AddItem appends a product to the end of the wishlist.
func (w *WishlistController) AddItem(c *fiber.Ctx) error {
	input := new(WishlistItemInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	wishlist, err := w.store.WishlistWithItems().FirstByField(c.UserContext(), "share_token", c.Params("token"))
	if err != nil {
		return storeError(err, "Wishlist not found")
	}

	if _, err := w.store.Products.GetByID(c.UserContext(), input.ProductID); err != nil {
		return storeError(err, "Product not found")
	}
	if wishlist.HasProduct(input.ProductID) {
		return fiber.NewError(fiber.StatusConflict, "Product is already in the wishlist")
	}

	position := 0
	if n := len(wishlist.Items); n > 0 {
		position = wishlist.Items[n-1].Position + 1
	}

	item := &model.WishlistItem{
		WishlistID: wishlist.ID,
		ProductID:  input.ProductID,
		Position:   position,
	}
	if err := w.store.WishlistItems.Create(c.UserContext(), item); err != nil {
		return err
	}

	wishlist.Items = append(wishlist.Items, *item)
	view, err := w.view(c, wishlist)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (w *WishlistController) RemoveItem(c *fiber.Ctx) error {
	wishlist, err := w.store.WishlistWithItems().FirstByField(c.UserContext(), "share_token", c.Params("token"))
	if err != nil {
		return storeError(err, "Wishlist not found")
	}

	productID := c.Params("product_id")
	for _, item := range wishlist.Items {
		if item.ProductID == productID {
			if err := w.store.WishlistItems.Delete(c.UserContext(), item.ID); err != nil {
				return storeError(err, "Item not found")
			}
			return c.SendStatus(fiber.StatusNoContent)
		}
	}

	return fiber.NewError(fiber.StatusNotFound, "Item not found")
}
