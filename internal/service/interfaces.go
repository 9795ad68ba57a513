// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/wasteworks/chargemap/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Charge rule operations
	CreateChargeRule(ctx context.Context, rule *model.ChargeRule) error
	GetChargeRules(ctx context.Context) ([]model.ChargeRule, error)
	DeleteChargeRule(ctx context.Context, id int64) error
	IncrementChargeRuleSampleCount(ctx context.Context, id int64, delta int) error

	// Alias rule operations
	ReplaceAliasRules(ctx context.Context, kind AliasKind, rules []model.AliasRule) error
	GetAliasRules(ctx context.Context, kind AliasKind) ([]model.AliasRule, error)

	// Account service map operations
	CreateAccountService(ctx context.Context, entry *model.AccountService) error
	GetAccountServices(ctx context.Context) ([]model.AccountService, error)

	// Invoice and line item operations
	SaveInvoice(ctx context.Context, invoice *model.Invoice) error
	GetLineItems(ctx context.Context, vendor string) ([]model.LineItem, error)

	// Classification run operations
	SaveRun(ctx context.Context, run *RunRecord) error
	SaveClassifications(ctx context.Context, runID string, results []model.ClassifiedLineItem) error
	GetRunSummaries(ctx context.Context, limit int) ([]RunRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// AliasKind identifies which alias table an operation targets.
type AliasKind string

// Alias table kinds.
const (
	AliasEquipment AliasKind = "equipment"
	AliasMaterial  AliasKind = "material"
)

// RunRecord is the persisted summary of one classification run.
type RunRecord struct {
	StartedAt      time.Time
	FinishedAt     time.Time
	ID             string
	Total          int
	VendorMatched  int
	DefaultMatched int
	Unclassified   int
	Resolved       int
	Ambiguous      int
	NotFound       int
}

// InvoiceFetcher downloads per-invoice documents from cloud storage.
type InvoiceFetcher interface {
	Fetch(ctx context.Context, invoiceMD5 string) ([]byte, error)
}

// ReportWriter exports classified line items for downstream consumers.
type ReportWriter interface {
	WriteDetail(path string, results []model.ClassifiedLineItem) error
}

// RetryOptions configures retry behavior for fallible external operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
