package users

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitlit/internal/cli"
)

const minPasswordLength = 8

// promptPassword asks for a password without echoing it. Replaced in tests.
var promptPassword = func() (string, error) {
	var password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(validatePassword),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return password, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email address %q", email)
	}
	return email, nil
}

type UserAddCmd struct {
	Email    string `required:"" help:"Email address for the new account."`
	Password string `help:"Account password (prompted when omitted)." env:"HABITLIT_PASSWORD"`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	email, err := normalizeEmail(c.Email)
	if err != nil {
		return err
	}

	password := c.Password
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := ctx.Backend.CreateUser(email, string(hash))
	if err != nil {
		return err
	}

	ctx.Printf("✓ Created user %s (id %d)\n", email, id)
	return nil
}

type UserShowCmd struct {
	Email string `required:"" help:"Email address of the account."`
}

func (c *UserShowCmd) Run(ctx *cli.Context) error {
	email, err := normalizeEmail(c.Email)
	if err != nil {
		return err
	}

	u, err := ctx.Backend.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return errors.New("no user with email " + email)
	}

	ctx.Printf("ID:       %d\n", u.ID)
	ctx.Printf("Email:    %s\n", u.Email)
	ctx.Printf("Created:  %s\n", u.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type UserVerifyCmd struct {
	Email    string `required:"" help:"Email address of the account."`
	Password string `help:"Password to check (prompted when omitted)." env:"HABITLIT_PASSWORD"`
}

func (c *UserVerifyCmd) Run(ctx *cli.Context) error {
	email, err := normalizeEmail(c.Email)
	if err != nil {
		return err
	}

	u, err := ctx.Backend.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return errors.New("no user with email " + email)
	}

	password := c.Password
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	if !CheckPassword(u.PasswordHash, password) {
		return errors.New("password does not match")
	}
	ctx.Println("✓ Password matches")
	return nil
}
