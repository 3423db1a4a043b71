package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/pkg/utils/image"
	"storefront_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const MaxProductImages = 12

// UploadProductImage resizes the multipart "image" field to webp, stores it
// and attaches it to the product. The first image becomes the cover.
func (p *ProductController) UploadProductImage(c *fiber.Ctx) error {
	if p.uploader == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Image storage is not configured")
	}

	product, err := p.store.Products.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(err, "Product not found")
	}

	imageCount, err := p.store.ProductImages.Count(c.UserContext(), repository.Filter{
		Where: map[string]interface{}{"product_id": product.ID},
	})
	if err != nil {
		return err
	}
	if imageCount >= MaxProductImages {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Maximum image limit reached (%d)", MaxProductImages))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded")
	}
	if err := validation.ValidateImage(file); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	processed, err := image.Process(src, p.images)
	if err != nil {
		log.Printf("Could not process image for product %s: %v", product.ID, err)
		return fiber.NewError(fiber.StatusBadRequest, "Could not process image")
	}

	key := fmt.Sprintf("products/%s/%d-%s%s", product.Slug, time.Now().UnixNano(), uuid.NewString(), image.Extension)
	url, err := p.uploader.Upload(c.UserContext(), key, image.ContentType, processed.Body)
	if err != nil {
		return err
	}

	img := &model.ProductImage{
		ProductID: product.ID,
		URL:       url,
		Order:     int(imageCount),
		IsCover:   imageCount == 0,
	}
	if err := p.store.ProductImages.Create(c.UserContext(), img); err != nil {
		if derr := p.uploader.Delete(c.UserContext(), url); derr != nil {
			log.Printf("Could not delete orphaned image %s: %v", url, derr)
		}
		return err
	}

	invalidateCatalog(c, p.cache)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   img,
		"width":   processed.Width,
		"height":  processed.Height,
	})
}

// DeleteProductImage removes an image. When the cover goes, the next image
// in order takes its place.
func (p *ProductController) DeleteProductImage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	img, err := p.store.ProductImages.GetByID(ctx, c.Params("image_id"))
	if err != nil || img.ProductID != c.Params("id") {
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Image not found")
		}
		return err
	}

	if err := p.store.ProductImages.Delete(ctx, img.ID); err != nil {
		return storeError(err, "Image not found")
	}

	if p.uploader != nil {
		if err := p.uploader.Delete(ctx, img.URL); err != nil {
			log.Printf("Could not delete file %s: %v", img.URL, err)
		}
	}

	if img.IsCover {
		rest, err := p.store.ProductImages.Search(ctx, repository.Filter{
			Where: map[string]interface{}{"product_id": img.ProductID},
			Order: imageOrder,
			Limit: 1,
		})
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			if err := p.store.ProductImages.UpdateFields(ctx, rest[0].ID, map[string]interface{}{"is_cover": true}); err != nil {
				return err
			}
		}
	}

	invalidateCatalog(c, p.cache)
	return c.SendStatus(fiber.StatusNoContent)
}
