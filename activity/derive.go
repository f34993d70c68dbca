// Package activity derives the audit trail from observed task mutations and
// mirrors the resulting records independently of the code that writes them.
package activity

import (
	"github.com/santhossiva2002/taskflow/domain"
)

// FromCreate classifies a successful create: always one created record.
func FromCreate(actor domain.Identity, taskID string, draft domain.TaskDraft) domain.Activity {
	return domain.Activity{
		Type:      domain.ActivityCreated,
		TaskID:    taskID,
		TaskTitle: draft.Title,
		User:      actor.Name,
		Priority:  draft.Priority,
	}
}

// FromUpdate classifies a successful update against the pre-update snapshot:
// a patch that carries a status differing from the snapshot yields a moved
// record with both boundary statuses, anything else an updated record. The
// snapshotted title and priority come from prev, not the patch.
func FromUpdate(actor domain.Identity, prev domain.Task, patch domain.TaskPatch) domain.Activity {
	a := domain.Activity{
		TaskID:    prev.ID,
		TaskTitle: prev.Title,
		User:      actor.Name,
		Priority:  prev.Priority,
	}
	if patch.Status != nil && *patch.Status != prev.Status {
		a.Type = domain.ActivityMoved
		a.FromStatus = prev.Status
		a.ToStatus = *patch.Status
		return a
	}
	a.Type = domain.ActivityUpdated
	return a
}
