package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"

	"github.com/hibiken/asynq"

	"github.com/gudam-erp/gudam-erp/internal/authz"
)

// SetStore is the slice of the permission-set repository the scan needs.
type SetStore interface {
	ListSets(ctx context.Context) ([]authz.PermissionSet, error)
	Upsert(ctx context.Context, params authz.UpsertParams) (authz.PermissionSet, error)
}

// PermissionScanJob walks every stored permission set and reports rows whose
// factory grants survived from before write-time normalization. With Repair
// set it rewrites them through the normal upsert path.
type PermissionScanJob struct {
	Store  SetStore
	Logger *slog.Logger
}

func NewPermissionScanJob(store SetStore, logger *slog.Logger) *PermissionScanJob {
	return &PermissionScanJob{Store: store, Logger: logger}
}

// Handle executes the scan.
func (j *PermissionScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("permission scan: handler not configured")
	}
	var payload PermissionScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	sets, err := j.Store.ListSets(ctx)
	if err != nil {
		j.logger().Error("permission scan: list sets", slog.Any("error", err))
		return err
	}

	var stale, repaired int
	for _, set := range sets {
		normalized := authz.NormalizeFactories(set.Factories)
		if reflect.DeepEqual(normalized, set.Factories) {
			continue
		}
		stale++
		j.logger().Warn("permission set carries non-normalized factory grants",
			slog.Int64("user_id", set.UserID),
			slog.Int64("set_id", set.ID))
		if !payload.Repair {
			continue
		}
		if _, err := j.Store.Upsert(ctx, authz.UpsertParams{
			UserID:        set.UserID,
			RoleID:        set.RoleID,
			Companies:     set.Companies,
			BusinessTypes: set.BusinessTypes,
			Factories:     normalized,
			Modules:       set.Modules,
		}); err != nil {
			j.logger().Error("permission scan: repair",
				slog.Int64("user_id", set.UserID), slog.Any("error", err))
			return err
		}
		repaired++
	}

	j.logger().Info("permission scan complete",
		slog.Int("sets", len(sets)),
		slog.Int("stale", stale),
		slog.Int("repaired", repaired))
	return nil
}

func (j *PermissionScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
