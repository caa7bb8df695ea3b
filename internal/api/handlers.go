package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/service"
)

// EventRequest is the request body for creating or updating an event
type EventRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Date        string   `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime   string   `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime     string   `json:"end_time" binding:"omitempty,datetime=15:04"`
	VenueID     *string  `json:"venue_id"`
	VenueName   string   `json:"venue_name"`
	VenueCity   string   `json:"venue_city"`
	Artists     []string `json:"artists"`
	ImageURL    string   `json:"image_url"`
	SourceURL   string   `json:"source_url"`
}

// IngestRequest is the request body for a batch of scraped candidates
type IngestRequest struct {
	Events []EventRequest `json:"events" binding:"required,min=1,dive"`
}

// TransitionRequest is the request body for a status transition
type TransitionRequest struct {
	From     models.EventStatus `json:"from" binding:"required,eventstatus"`
	To       models.EventStatus `json:"to" binding:"required,eventstatus"`
	Actor    string             `json:"actor"`
	Metadata json.RawMessage    `json:"metadata"`
}

func (r EventRequest) toInput() service.EventInput {
	return service.EventInput{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		VenueID:     r.VenueID,
		VenueName:   r.VenueName,
		VenueCity:   r.VenueCity,
		Artists:     r.Artists,
		ImageURL:    r.ImageURL,
		SourceURL:   r.SourceURL,
	}
}

// createEvent creates a manual draft event
func (s *Server) createEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	event, err := s.svc.CreateManual(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ingestEvents creates draft events from a batch of scraped candidates
func (s *Server) ingestEvents(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	inputs := make([]service.EventInput, len(req.Events))
	for i, ev := range req.Events {
		inputs[i] = ev.toInput()
	}

	events, err := s.svc.IngestScraped(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ingested": len(events), "events": events})
}

// getEvent returns an event by ID
func (s *Server) getEvent(c *gin.Context) {
	event, err := s.svc.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// updateEvent replaces an event's content fields
func (s *Server) updateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	event, err := s.svc.UpdateDetails(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// listEvents lists events with a given status
func (s *Server) listEvents(c *gin.Context) {
	var query struct {
		Status models.EventStatus `form:"status" binding:"required,eventstatus"`
		Limit  int                `form:"limit"`
		Offset int                `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	events, err := s.svc.ListEvents(c.Request.Context(), query.Status, query.Limit, query.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// transitionEvent executes a status transition
func (s *Server) transitionEvent(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	event, err := s.svc.Transition(c.Request.Context(), c.Param("id"), req.From, req.To, req.Actor, req.Metadata)
	if err != nil {
		respondError(c, err)
		return
	}

	if event == nil {
		// Requested status equals the current one: nothing was written.
		c.JSON(http.StatusOK, gin.H{"changed": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"changed": true, "event": event})
}

// getHistory returns the transition log of an event
func (s *Server) getHistory(c *gin.Context) {
	transitions, err := s.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transitions": transitions, "count": len(transitions)})
}

// getReadiness reports whether an event is complete enough to publish
func (s *Server) getReadiness(c *gin.Context) {
	readiness, err := s.svc.Readiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, readiness)
}

// getFeed returns the public feed of published events
func (s *Server) getFeed(c *gin.Context) {
	events, err := s.svc.PublishedFeed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// searchFeed searches published events by free text
func (s *Server) searchFeed(c *gin.Context) {
	var query struct {
		Q    string `form:"q" binding:"required"`
		Size int    `form:"size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	docs, err := s.svc.SearchFeed(c.Request.Context(), query.Q, query.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": docs, "count": len(docs)})
}
