package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/wasteworks/chargemap/internal/config"
	"github.com/wasteworks/chargemap/internal/model"
	"github.com/wasteworks/chargemap/internal/resolve"
	"github.com/wasteworks/chargemap/internal/rules"
	"github.com/wasteworks/chargemap/internal/service"
	"github.com/wasteworks/chargemap/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadRuleSet assembles the run's rule snapshot. A --rules YAML file, when
// given, replaces the stored tables for this run only.
func loadRuleSet(ctx context.Context, store service.Storage, rulesFile string) (*rules.RuleSet, error) {
	if rulesFile != "" {
		return rules.Load(config.ExpandPath(rulesFile))
	}

	equipment, err := store.GetAliasRules(ctx, service.AliasEquipment)
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment aliases: %w", err)
	}
	materials, err := store.GetAliasRules(ctx, service.AliasMaterial)
	if err != nil {
		return nil, fmt.Errorf("failed to load material aliases: %w", err)
	}
	charges, err := store.GetChargeRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge rules: %w", err)
	}

	rs := &rules.RuleSet{
		Equipment: equipment,
		Materials: materials,
		Charges:   charges,
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// loadServiceMap builds the immutable service map snapshot from storage.
func loadServiceMap(ctx context.Context, store service.Storage) (*resolve.ServiceMap, error) {
	entries, err := store.GetAccountServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account services: %w", err)
	}
	return resolve.NewServiceMap(entries)
}

// scopeLabel renders a rule scope for table output.
func scopeLabel(rule model.ChargeRule) string {
	return rule.Scope.String()
}
