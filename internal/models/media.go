package models

// MediaFolder is the destination designation accepted by the media upload API.
type MediaFolder string

const (
	FolderImages MediaFolder = "images"
	FolderAudio  MediaFolder = "audio"
	FolderVideo  MediaFolder = "video"
)

// MediaUpload is the upload API response.
type MediaUpload struct {
	URL string `json:"url"`
}
