package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPermissionScan audits stored permission sets for malformed blobs
	// and non-normalized factory grants.
	TaskPermissionScan = "authz:permission_scan"
)

// PermissionScanPayload parameterizes a permission data-quality scan.
type PermissionScanPayload struct {
	// Repair rewrites factory grants that decode but are not in
	// normalized form. Malformed blobs are only reported, never touched.
	Repair bool `json:"repair"`
}

// NewPermissionScanTask constructs the scan task.
func NewPermissionScanTask(payload PermissionScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPermissionScan, data), nil
}
