package models

import "errors"

const (
	ContentTypeYoutube = "youtube"
	ContentTypeTwitter = "twitter"
)

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

var (
	ErrDuplicateUserName = errors.New("the user name is already taken")

	ErrDuplicateShareHash = errors.New("the share hash already exists")
)

// Content is a saved YouTube video or Twitter post owned by a user.
type Content struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	Link   string   `json:"link"`
	UserID string   `json:"user_id"`
	Tags   []string `json:"tags"`
}

// ShareLink is the public alias exposing one user's content collection.
type ShareLink struct {
	Hash   string `json:"hash"`
	UserID string `json:"user_id"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type SigninRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SigninResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type AddContentRequest struct {
	Title string `json:"title" validate:"required"`
	Link  string `json:"link" validate:"required,url"`
	Type  string `json:"type" validate:"required,oneof=youtube twitter"`
}

type ContentsResponse struct {
	Content []Content `json:"content"`
}

type ShareRequest struct {
	Share *bool `json:"share" validate:"required"`
}

type ShareResponse struct {
	Hash string `json:"hash"`
}

type SharedContentResponse struct {
	Username string    `json:"username"`
	Content  []Content `json:"content"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Env       string `json:"env"`
}

type InternalStatsResponse struct {
	Users      int64 `json:"users"`
	Contents   int64 `json:"contents"`
	ShareLinks int64 `json:"share_links"`
}
