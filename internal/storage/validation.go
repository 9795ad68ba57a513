// Package storage provides the data persistence layer for the chargemap application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wasteworks/chargemap/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidRule      = errors.New("invalid charge rule")
	ErrInvalidAliasRule = errors.New("invalid alias rule")
	ErrInvalidService   = errors.New("invalid account service entry")
	ErrInvalidInvoice   = errors.New("invalid invoice")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateChargeRule validates a charge rule before persistence.
func validateChargeRule(rule *model.ChargeRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if !rule.Scope.IsWildcard() && strings.TrimSpace(rule.Scope.Vendor()) == "" {
		return fmt.Errorf("%w: vendor scope is empty", ErrInvalidRule)
	}
	if err := validateString(rule.Pattern, "pattern"); err != nil {
		return err
	}
	if err := validateString(rule.ChargeType, "charge_type"); err != nil {
		return err
	}
	if rule.Priority <= 0 {
		return fmt.Errorf("%w: priority must be positive", ErrInvalidRule)
	}
	return nil
}

// validateAccountService validates a service map entry before persistence.
func validateAccountService(entry *model.AccountService) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if err := validateString(entry.AccountID, "account_id"); err != nil {
		return err
	}
	if err := validateString(entry.Equipment, "equipment"); err != nil {
		return err
	}
	if err := validateString(entry.Material, "material"); err != nil {
		return err
	}
	if err := validateString(entry.ServiceID, "service_id"); err != nil {
		return err
	}
	return nil
}

// validateInvoice validates an invoice before persistence.
func validateInvoice(invoice *model.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("%w: invoice", ErrNilParameter)
	}
	if err := validateString(invoice.MD5, "md5"); err != nil {
		return err
	}
	return nil
}
