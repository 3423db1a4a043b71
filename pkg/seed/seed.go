package seed

import (
	"context"
	"fmt"
	"log"
	"strings"

	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the first back-office account when no users exist.
func SeedAdmin(ctx context.Context, store *repository.Store, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	count, err := store.Users.Count(ctx, repository.Filter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{Email: email, Password: string(hash), Name: "Administrator", Role: model.RoleAdmin}
	if err := store.Users.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("Seeded admin user %s", email)
	return nil
}
