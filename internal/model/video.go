package model

// Video is a YouTube link record. It is independent of Resource even though
// both carry subject fields.
type Video struct {
	ID          string `json:"_id,omitempty"`
	SubjectCode string `json:"subjectCode"`
	SubjectName string `json:"subjectName"`
	Title       string `json:"title"`
	YoutubeURL  string `json:"youtubeUrl"`
	Description string `json:"description,omitempty"`
}

// VideoForm mirrors the editable fields of a Video.
type VideoForm struct {
	SubjectCode string `json:"subjectCode" validate:"required"`
	SubjectName string `json:"subjectName" validate:"required"`
	Title       string `json:"title" validate:"required"`
	YoutubeURL  string `json:"youtubeUrl" validate:"required"`
	Description string `json:"description,omitempty"`
}

// FormFromVideo loads a record into a form.
func FormFromVideo(v Video) VideoForm {
	return VideoForm{
		SubjectCode: v.SubjectCode,
		SubjectName: v.SubjectName,
		Title:       v.Title,
		YoutubeURL:  v.YoutubeURL,
		Description: v.Description,
	}
}
