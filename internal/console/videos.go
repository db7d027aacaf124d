package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/model"
)

const (
	msgVideoCreated    = "Video Added Successfully!"
	msgVideoUpdated    = "Video Updated Successfully!"
	msgVideoSaveFailed = "Failed to save video. Make sure the API server is running."
	msgVideoDelFailed  = "Failed to delete video."
	promptDeleteVideo  = "Are you sure you want to delete this video?"
)

// VideoView is the video table plus its form. It shares nothing with
// ResourceView.
type VideoView struct {
	env       Env
	videos    []model.Video
	editingID string

	Form model.VideoForm
}

// NewVideoView returns an empty view.
func NewVideoView(env Env) *VideoView {
	return &VideoView{env: env}
}

// Videos returns a copy of the loaded collection in server order.
func (v *VideoView) Videos() []model.Video {
	return append([]model.Video(nil), v.videos...)
}

// EditingID is the id being edited, or "".
func (v *VideoView) EditingID() string { return v.editingID }

// Editing reports whether the form is in edit mode.
func (v *VideoView) Editing() bool { return v.editingID != "" }

// Refresh replaces the collection with the server's list.
func (v *VideoView) Refresh(ctx context.Context) error {
	list, err := v.env.API.ListVideos(ctx)
	if err != nil {
		v.env.readFailed("videos", err)
		return err
	}
	v.videos = list
	return nil
}

// Submit creates or updates a video from Form.
func (v *VideoView) Submit(ctx context.Context) error {
	if err := model.Validate(v.Form); err != nil {
		v.env.fail(err.Error())
		return err
	}
	token := v.env.token()
	var err error
	if v.editingID != "" {
		err = v.env.API.UpdateVideo(ctx, token, v.editingID, v.Form)
	} else {
		err = v.env.API.CreateVideo(ctx, token, v.Form)
	}
	if err != nil {
		v.env.logger().Error("save video failed", zap.String("id", v.editingID), zap.Error(err))
		v.env.fail(msgVideoSaveFailed)
		return fmt.Errorf("save video: %w", err)
	}
	if v.editingID != "" {
		v.env.info(msgVideoUpdated)
	} else {
		v.env.info(msgVideoCreated)
	}
	v.editingID = ""
	v.Form = model.VideoForm{}
	_ = v.Refresh(ctx)
	return nil
}

// BeginEdit loads video into the form and enters edit mode.
func (v *VideoView) BeginEdit(video model.Video) {
	v.editingID = video.ID
	v.Form = model.FormFromVideo(video)
}

// BeginEditByID looks id up in the loaded collection and calls BeginEdit.
func (v *VideoView) BeginEditByID(id string) error {
	for _, video := range v.videos {
		if video.ID == id {
			v.BeginEdit(video)
			return nil
		}
	}
	return fmt.Errorf("video %s: %w", id, ErrNotFound)
}

// CancelEdit leaves edit mode and clears the form.
func (v *VideoView) CancelEdit() {
	v.editingID = ""
	v.Form = model.VideoForm{}
}

// Remove deletes id after confirmation and refetches the collection.
func (v *VideoView) Remove(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if !confirmed(confirm, promptDeleteVideo) {
		return false, nil
	}
	if err := v.env.API.DeleteVideo(ctx, v.env.token(), id); err != nil {
		v.env.logger().Error("delete video failed", zap.String("id", id), zap.Error(err))
		v.env.fail(msgVideoDelFailed)
		return false, fmt.Errorf("delete video: %w", err)
	}
	_ = v.Refresh(ctx)
	return true, nil
}
