package controller

import (
	"context"
	"errors"
	"log"
	"strings"

	"storefront_backend/internal/middleware"
	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=40"`
}

// WelcomeMailer greets newly registered customers.
type WelcomeMailer interface {
	SendWelcomeEmail(email, name string) error
}

type AuthController struct {
	store  *repository.Store
	tokens *jwt.Manager
	mailer WelcomeMailer
}

// NewAuthController accepts a nil mailer.
func NewAuthController(store *repository.Store, tokens *jwt.Manager, mailer WelcomeMailer) *AuthController {
	return &AuthController{store: store, tokens: tokens, mailer: mailer}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var errInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")

// Login signs in a back-office user.
func (a *AuthController) Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	user, err := a.store.Users.FirstByField(c.UserContext(), "email", normalizeEmail(input.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return errInvalidCredentials
	}
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return errInvalidCredentials
	}

	token, err := a.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.GetPublicProfile(),
	})
}

func (a *AuthController) GetMe(c *fiber.Ctx) error {
	claims := middleware.CurrentUser(c)

	user, err := a.store.Users.GetByID(c.UserContext(), claims.Subject)
	if err != nil {
		return storeError(err, "User not found")
	}

	return c.JSON(user.GetPublicProfile())
}

// RegisterCustomer creates a storefront account and signs it in.
func (a *AuthController) RegisterCustomer(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	email := normalizeEmail(input.Email)
	if _, err := a.store.Customers.FirstByField(c.UserContext(), "email", email); err == nil {
		return fiber.NewError(fiber.StatusConflict, "Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	customer := &model.Customer{
		Email:     email,
		Password:  string(hash),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}
	if err := a.store.Customers.Create(c.UserContext(), customer); err != nil {
		return err
	}

	if a.mailer != nil {
		if err := a.mailer.SendWelcomeEmail(customer.Email, customer.GetFullName()); err != nil {
			log.Printf("Could not send welcome email to %s: %v", customer.Email, err)
		}
	}

	return a.customerSession(c.Status(fiber.StatusCreated), customer)
}

func (a *AuthController) LoginCustomer(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	customer, err := a.store.Customers.FirstByField(c.UserContext(), "email", normalizeEmail(input.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return errInvalidCredentials
	}
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(input.Password)); err != nil {
		return errInvalidCredentials
	}

	return a.customerSession(c, customer)
}

func (a *AuthController) GetCustomerMe(c *fiber.Ctx) error {
	customer, err := a.store.Customers.GetByID(c.UserContext(), middleware.CurrentCustomerID(c))
	if err != nil {
		return storeError(err, "Customer not found")
	}
	return c.JSON(customer)
}

func (a *AuthController) customerSession(c *fiber.Ctx, customer *model.Customer) error {
	token, err := a.tokens.GenerateToken(customer.ID, customer.Email, jwt.RoleCustomer)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token":    token,
		"customer": customer,
	})
}

// customerIDByEmail finds the account that owns email, if any.
func customerIDByEmail(ctx context.Context, store *repository.Store, email string) string {
	customer, err := store.Customers.FirstByField(ctx, "email", normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Could not look up customer by email: %v", err)
		}
		return ""
	}
	return customer.ID
}
