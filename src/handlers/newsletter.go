package handlers

import (
	"net/http"
	"strconv"

	"github.com/gamehost/siteadmin/src/services"
	"github.com/gin-gonic/gin"
)

// NewsletterHandler handles public subscription and admin broadcast endpoints
type NewsletterHandler struct {
	newsletter *services.NewsletterService
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(newsletter *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter}
}

// SubscriptionRequest is the body of the subscribe and unsubscribe endpoints
type SubscriptionRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// NewsletterSendRequest is the body of POST /api/admin/newsletter/send
type NewsletterSendRequest struct {
	Subject string `json:"subject" binding:"required,max=255"`
	Body    string `json:"body" binding:"required"`
}

// HandleSubscribe subscribes an address; repeating it is harmless
func (nh *NewsletterHandler) HandleSubscribe(c *gin.Context) {
	var req SubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := nh.newsletter.Subscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "failed to subscribe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed successfully"})
}

// HandleUnsubscribe stops newsletters for an address
func (nh *NewsletterHandler) HandleUnsubscribe(c *gin.Context) {
	var req SubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := nh.newsletter.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "failed to unsubscribe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed successfully"})
}

// HandleListSubscribers returns every subscriber with a total
func (nh *NewsletterHandler) HandleListSubscribers(c *gin.Context) {
	subs, err := nh.newsletter.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to list subscribers")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscribers": subs,
		"total":       len(subs),
	})
}

// HandleDeleteSubscriber removes a subscriber by id
func (nh *NewsletterHandler) HandleDeleteSubscriber(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := nh.newsletter.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to delete subscriber")
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleSend mails a newsletter to every active subscriber
func (nh *NewsletterHandler) HandleSend(c *gin.Context) {
	var req NewsletterSendRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := nh.newsletter.Send(c.Request.Context(), req.Subject, req.Body)
	if err != nil {
		respondError(c, err, "failed to send newsletter")
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseID reads the :id path parameter, answering 400 when it is not a positive integer
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, &services.ValidationError{Fields: []string{"id"}, Reason: "invalid id"}, "")
		return 0, false
	}
	return id, true
}
