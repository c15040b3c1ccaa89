package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/service"
)

type createJobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type placeBidRequest struct {
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h HandlerSet) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}

	job, err := h.services.Match.CreateJob(c.Request.Context(), currentUser(c), service.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Budget:      req.Budget,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, job, "Job created successfully")
}

func (h HandlerSet) ListJobs(c *gin.Context) {
	jobs, err := h.services.Match.ListJobs(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, jobs, "Jobs retrieved")
}

func (h HandlerSet) GetJob(c *gin.Context) {
	jobID, valid := pathID(c, "jobId")
	if !valid {
		return
	}
	job, err := h.services.Match.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, job, "Job retrieved")
}

func (h HandlerSet) ListBids(c *gin.Context) {
	jobID, valid := pathID(c, "jobId")
	if !valid {
		return
	}
	bids, err := h.services.Match.ListBids(c.Request.Context(), jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, bids, "Bids retrieved (Fair-Play sorted)")
}

func (h HandlerSet) PlaceBid(c *gin.Context) {
	jobID, valid := pathID(c, "jobId")
	if !valid {
		return
	}
	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}

	bid, err := h.services.Match.PlaceBid(c.Request.Context(), currentUser(c), jobID, req.Amount, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, bid, "Bid placed successfully")
}

func (h HandlerSet) AcceptBid(c *gin.Context) {
	jobID, valid := pathID(c, "jobId")
	if !valid {
		return
	}
	bidID, valid := pathID(c, "bidId")
	if !valid {
		return
	}

	bid, err := h.services.Match.AcceptBid(c.Request.Context(), currentUser(c), jobID, bidID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, bid, "Bid accepted")
}

func (h HandlerSet) UpdateJobStatus(c *gin.Context) {
	jobID, valid := pathID(c, "jobId")
	if !valid {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}

	job, err := h.services.Match.UpdateJobStatus(c.Request.Context(), currentUser(c), jobID, models.JobStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, job, "Job status updated")
}
