package console

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/model"
)

// ErrNotFound is returned when an id is not in the loaded collection.
var ErrNotFound = errors.New("not found in loaded collection")

const (
	msgResourceCreated    = "Successfully Uploaded to App!"
	msgResourceUpdated    = "Successfully Updated!"
	msgResourceSaveFailed = "Failed to save resource. Make sure the API server is running."
	msgResourceDelFailed  = "Failed to delete resource."
	promptDeleteResource  = "Are you sure you want to delete this PDF?"
)

// ResourceView is the resource table plus its upload/edit form.
type ResourceView struct {
	env       Env
	subjects  *SubjectRegistry
	resources []model.Resource
	editingID string

	// Form holds the values currently bound to the upload/edit form.
	Form model.ResourceForm
}

// NewResourceView returns an empty view. Every successful refresh re-derives
// subjects from the loaded resources.
func NewResourceView(env Env, subjects *SubjectRegistry) *ResourceView {
	return &ResourceView{env: env, subjects: subjects, Form: model.NewResourceForm()}
}

// Resources returns a copy of the loaded collection in server order.
func (v *ResourceView) Resources() []model.Resource {
	return append([]model.Resource(nil), v.resources...)
}

// EditingID is the id being edited, or "" in create mode.
func (v *ResourceView) EditingID() string { return v.editingID }

// Editing reports whether the form is in edit mode.
func (v *ResourceView) Editing() bool { return v.editingID != "" }

// Refresh replaces the collection with the server's list. On failure the
// previous collection is kept and the read policy applies.
func (v *ResourceView) Refresh(ctx context.Context) error {
	list, err := v.env.API.ListResources(ctx)
	if err != nil {
		v.env.readFailed("resources", err)
		return err
	}
	v.resources = list
	if v.subjects != nil {
		v.subjects.DeriveFromResources(list)
	}
	return nil
}

// Submit creates a resource from Form, or updates the one being edited. On
// success the edit mode and transient fields are cleared and the collection
// refetched; on failure the form is kept for a retry.
func (v *ResourceView) Submit(ctx context.Context) error {
	if err := model.Validate(v.Form); err != nil {
		v.env.fail(err.Error())
		return err
	}
	token := v.env.token()
	var err error
	if v.editingID != "" {
		err = v.env.API.UpdateResource(ctx, token, v.editingID, v.Form)
	} else {
		err = v.env.API.CreateResource(ctx, token, v.Form)
	}
	if err != nil {
		v.env.logger().Error("save resource failed", zap.String("id", v.editingID), zap.Error(err))
		v.env.fail(msgResourceSaveFailed)
		return fmt.Errorf("save resource: %w", err)
	}
	if v.editingID != "" {
		v.env.info(msgResourceUpdated)
	} else {
		v.env.info(msgResourceCreated)
	}
	v.editingID = ""
	v.Form.ClearTransient()
	_ = v.Refresh(ctx)
	return nil
}

// BeginEdit loads r into the form and enters edit mode. The record is not
// refetched, so a concurrent change by someone else is overwritten on submit.
func (v *ResourceView) BeginEdit(r model.Resource) {
	v.editingID = r.ID
	v.Form = model.FormFromResource(r)
}

// BeginEditByID looks id up in the loaded collection and calls BeginEdit.
func (v *ResourceView) BeginEditByID(id string) error {
	for _, r := range v.resources {
		if r.ID == id {
			v.BeginEdit(r)
			return nil
		}
	}
	return fmt.Errorf("resource %s: %w", id, ErrNotFound)
}

// CancelEdit leaves edit mode and clears the transient fields.
func (v *ResourceView) CancelEdit() {
	v.editingID = ""
	v.Form.ClearTransient()
}

// Remove deletes id after confirmation and refetches the collection. It
// reports whether a delete was attempted and succeeded. A nil confirm
// declines.
func (v *ResourceView) Remove(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if !confirmed(confirm, promptDeleteResource) {
		return false, nil
	}
	if err := v.env.API.DeleteResource(ctx, v.env.token(), id); err != nil {
		v.env.logger().Error("delete resource failed", zap.String("id", id), zap.Error(err))
		v.env.fail(msgResourceDelFailed)
		return false, fmt.Errorf("delete resource: %w", err)
	}
	_ = v.Refresh(ctx)
	return true, nil
}

// Filter applies FilterResources to the loaded collection.
func (v *ResourceView) Filter(branch, semester string) []model.Resource {
	return FilterResources(v.resources, branch, semester)
}
