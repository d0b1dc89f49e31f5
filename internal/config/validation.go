package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if dups := lo.FindDuplicates(c.Currency.List); len(dups) > 0 {
		return fmt.Errorf("currency.list contains duplicates: %v", dups)
	}
	if !lo.Contains(c.Currency.List, c.Currency.Base) {
		return fmt.Errorf("currency.base %q is not in currency.list", c.Currency.Base)
	}
	if !lo.Contains(c.Currency.List, c.Currency.Default) {
		return fmt.Errorf("currency.default %q is not in currency.list", c.Currency.Default)
	}
	if unknown := lo.Without(lo.Keys(c.Currency.Rates), c.Currency.List...); len(unknown) > 0 {
		return fmt.Errorf("currency.rates has currencies outside currency.list: %v", unknown)
	}

	return nil
}

// IsAdmin reports whether userID is the configured administrator. With no
// administrator configured nobody is.
func (c *Config) IsAdmin(userID int64) bool {
	return c.Telegram.AdminID != 0 && userID == c.Telegram.AdminID
}
