package main

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jovote/models"
	"jovote/pkg/journal"
	"jovote/pkg/mailer"
	"jovote/pkg/security"
)

var emailRE = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

func sendContactHandler(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		respondErr(c, http.StatusBadRequest, "please provide all required fields: name, email, subject, and message", nil)
		return
	}
	if !emailRE.MatchString(req.Email) {
		respondErr(c, http.StatusBadRequest, "please provide a valid email address", nil)
		return
	}
	// The form is unauthenticated, so throttle per client.
	if n := limiter.Increment("contact:"+c.ClientIP(), time.Minute); n > 5 {
		monitor.Record(security.EventRateLimitExceeded, c.ClientIP(), c.Request.Method, c.FullPath(), c.Request.UserAgent(), "contact form flood")
		respondErr(c, http.StatusTooManyRequests, "too many messages, please wait a minute and try again", nil)
		return
	}

	msg := models.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Category:  "general",
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if err := db.Create(&msg).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to send message, please try again later", err)
		return
	}

	// Confirmation + editor notification are best-effort: failures are
	// logged and never affect the stored message.
	ctx := c.Request.Context()
	if err := mail.Send(ctx, mailer.Message{
		To:      req.Email,
		Subject: "Message Received - JOVOTE Journal",
		Body: fmt.Sprintf("Dear %s,\n\nThank you for contacting the journal. We have received your message %q and will respond within 2-3 business days.\n\nJOVOTE Editorial Team",
			req.Name, req.Subject),
	}); err != nil {
		logUpstreamWarning("confirmation email", err)
	}
	if err := mail.Send(ctx, mailer.Message{
		To:      editorEmail(),
		Subject: "New Contact Message - " + req.Subject,
		Body: fmt.Sprintf("From: %s <%s>\nReceived: %s\nMessage ID: %d\n\n%s",
			req.Name, req.Email, time.Now().Format(time.RFC1123), msg.ID, req.Message),
	}); err != nil {
		logUpstreamWarning("editor notification email", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "your message has been sent successfully, we will respond shortly",
		"messageId": msg.ID,
	})
}

func editorEmail() string {
	if v := strings.TrimSpace(os.Getenv("EDITOR_EMAIL")); v != "" {
		return v
	}
	return "editor@jovote.local"
}

func listContactHandler(c *gin.Context) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := queryInt(c, "limit", journal.DefaultPageSize)
	if size < 1 {
		size = journal.DefaultPageSize
	}

	q := db.Model(&models.ContactMessage{})
	if st := c.Query("status"); st != "" {
		q = q.Where("status = ?", st)
	}
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to fetch messages", err)
		return
	}
	var items []models.ContactMessage
	if err := q.Order("created_at desc").Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to fetch messages", err)
		return
	}
	respondOK(c, http.StatusOK, "messages retrieved successfully", gin.H{
		"messages":    items,
		"currentPage": page,
		"totalPages":  (total + int64(size) - 1) / int64(size),
		"total":       total,
	})
}

func findContactByParam(c *gin.Context) (*models.ContactMessage, bool) {
	id, err := journal.ParseID(c.Param("id"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "invalid message ID", nil)
		return nil, false
	}
	var msg models.ContactMessage
	if err := db.First(&msg, id).Error; err != nil {
		respondErr(c, http.StatusNotFound, "message not found", nil)
		return nil, false
	}
	return &msg, true
}

func getContactHandler(c *gin.Context) {
	msg, ok := findContactByParam(c)
	if !ok {
		return
	}
	// Opening a new message marks it read.
	if msg.Status == models.ContactStatusNew {
		db.Model(msg).Update("status", models.ContactStatusRead)
	}
	respondOK(c, http.StatusOK, "message retrieved successfully", gin.H{"message_data": msg})
}

func updateContactHandler(c *gin.Context) {
	msg, ok := findContactByParam(c)
	if !ok {
		return
	}
	var req struct {
		Status     *string `json:"status"`
		Priority   *string `json:"priority"`
		Category   *string `json:"category"`
		AdminNotes *string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Status != nil {
		switch *req.Status {
		case models.ContactStatusNew, models.ContactStatusRead, models.ContactStatusReplied, models.ContactStatusArchived:
			msg.Status = *req.Status
		default:
			respondErr(c, http.StatusBadRequest, "unknown status", nil)
			return
		}
	}
	if req.Priority != nil {
		msg.Priority = *req.Priority
	}
	if req.Category != nil {
		msg.Category = *req.Category
	}
	if req.AdminNotes != nil {
		msg.AdminNotes = *req.AdminNotes
	}
	if err := db.Save(msg).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to update message", err)
		return
	}
	respondOK(c, http.StatusOK, "message updated successfully", gin.H{"message_data": msg})
}

func deleteContactHandler(c *gin.Context) {
	msg, ok := findContactByParam(c)
	if !ok {
		return
	}
	if err := db.Delete(msg).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to delete message", err)
		return
	}
	respondOK(c, http.StatusOK, "message deleted successfully", nil)
}
