package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/config"
	"github.com/Veraticus/splitflow/internal/plan"
	"github.com/Veraticus/splitflow/internal/service"
	"github.com/Veraticus/splitflow/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// resolveBackendURL picks the backend base URL. Flags and environment win
// over the persisted settings cache; the local dev server is the fallback.
func resolveBackendURL(ctx context.Context, store service.Storage) string {
	if v := viper.GetString("backend.url"); v != "" {
		return v
	}
	if v := os.Getenv("SPLITFLOW_BACKEND_URL"); v != "" {
		return v
	}
	if store != nil {
		if v, err := store.GetSetting(ctx, storage.SettingBackendURL); err == nil && v != "" {
			return v
		}
	}
	return config.BackendURL()
}

// newBackendClient builds the API client for the resolved backend URL.
func newBackendClient(ctx context.Context, store service.Storage) (*api.Client, error) {
	return api.NewClient(resolveBackendURL(ctx, store), slog.Default())
}

// resolveTab returns the tab argument, falling back to the configured
// default tab when the command was invoked without one.
func resolveTab(ctx context.Context, store service.Storage, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if store != nil {
		if v, err := store.GetSetting(ctx, storage.SettingDefaultTab); err == nil && v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no tab given and no default_tab setting configured")
}

// loadSession builds a session either from a fresh planning run or, when
// offline is set, from the last snapshot saved for the tab.
func loadSession(cmd *cobra.Command, client *api.Client, store service.Storage, tab string, offline bool) (*plan.Session, plan.IngestResult, error) {
	ctx := cmd.Context()

	if offline {
		snapshot, savedAt, err := store.GetPlanSnapshot(ctx, tab)
		if err != nil {
			return nil, plan.IngestResult{}, fmt.Errorf("no snapshot for tab %q: %w", tab, err)
		}
		session := plan.NewSession()
		if err := session.Restore(tab, snapshot); err != nil {
			return nil, plan.IngestResult{}, err
		}
		slog.Info("restored plan from snapshot", "tab", tab, "saved_at", savedAt)
		return session, plan.IngestResult{
			DateContext:    snapshot.DateContext,
			SplitsRequired: len(snapshot.SplitsRequired),
			NoConflict:     len(snapshot.NoConflict),
			Summary:        snapshot.Summary,
		}, nil
	}

	return fetchPlan(ctx, client, store, tab)
}

// fetchPlan runs a planning request and ingests it into a fresh session.
// On success the plan is snapshotted for later breakdown/restore use.
func fetchPlan(ctx context.Context, client *api.Client, store service.Storage, tab string) (*plan.Session, plan.IngestResult, error) {
	resp, err := client.Plan(ctx, tab)
	if err != nil {
		return nil, plan.IngestResult{}, err
	}

	session := plan.NewSession()
	result, err := session.Ingest(tab, resp)
	if err != nil {
		return nil, plan.IngestResult{}, err
	}

	if store != nil {
		if err := store.SavePlanSnapshot(ctx, tab, session.Plan()); err != nil {
			slog.Warn("failed to snapshot plan", "tab", tab, "error", err)
		}
		if err := store.SetSetting(ctx, storage.SettingLastPlanAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
			slog.Warn("failed to record plan time", "error", err)
		}
	}

	return session, result, nil
}
