package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diya-thabet/hirfa/internal/media/sniffer"
	"github.com/diya-thabet/hirfa/internal/service"
)

type storyRequest struct {
	MediaURL string `json:"mediaUrl"`
	Caption  string `json:"caption"`
}

type sendMessageRequest struct {
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	JobID      int64  `json:"jobId"`
	Content    string `json:"content"`
}

type reviewRequest struct {
	JobID    int64   `json:"jobId"`
	Rating   int     `json:"rating"`
	Comment  string  `json:"comment"`
	PhotoURL *string `json:"photoUrl"`
}

func (h HandlerSet) Feed(c *gin.Context) {
	stories, err := h.services.Community.Feed(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, stories, "Community Feed")
}

func (h HandlerSet) PostStory(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}
	story, err := h.services.Community.PostStory(c.Request.Context(), currentUser(c), req.MediaURL, req.Caption)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, story, "Story posted!")
}

func (h HandlerSet) ChatHistory(c *gin.Context) {
	jobID, valid := pathID(c, "jobId")
	if !valid {
		return
	}
	messages, err := h.services.Chat.History(c.Request.Context(), jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, messages, "Chat history retrieved")
}

func (h HandlerSet) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}
	msg, err := h.services.Chat.Send(c.Request.Context(), currentUser(c), service.SendMessageInput{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		JobID:      req.JobID,
		Content:    req.Content,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, msg, "Message sent")
}

func (h HandlerSet) CreateReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}
	review, err := h.services.Review.Create(c.Request.Context(), currentUser(c), service.CreateReviewInput{
		JobID:    req.JobID,
		Rating:   req.Rating,
		Comment:  req.Comment,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, review, "Review created")
}

func (h HandlerSet) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	defer file.Close()

	media, err := h.services.Media.Upload(c.Request.Context(), service.UploadInput{
		Owner:        currentUser(c),
		File:         file,
		DeclaredType: sniffer.MimeTypeFromHTTP(http.Header(header.Header)),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, media, "Media uploaded")
}
