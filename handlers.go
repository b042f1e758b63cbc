package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"jovote/models"
	"jovote/pkg/security"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)

	// Public contact form + journal reads.
	r.POST("/api/contact/send", sendContactHandler)
	jr := r.Group("/api/journals")
	jr.GET("", listCurrentYearHandler)
	jr.GET("/archive/:year", listArchivedHandler)
	jr.GET("/volume/:year/:quarter", listByVolumeHandler)
	jr.GET("/search/advanced", advancedSearchHandler)
	jr.GET("/stats/overview", statsHandler)
	jr.GET("/:id", getJournalHandler)
	jr.GET("/:id/download/pdf", downloadRedirectHandler(journalFilePDF))
	jr.GET("/:id/download/docx", downloadRedirectHandler(journalFileDocx))
	jr.GET("/:id/direct-download/pdf", directDownloadHandler(journalFilePDF))
	jr.GET("/:id/direct-download/docx", directDownloadHandler(journalFileDocx))

	// Authenticated submission.
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/api/journals/submit", submitJournalHandler)

	// Admin management surface.
	admin := r.Group("/api/journals")
	admin.Use(jwtAuthMiddleware(), adminOnlyMiddleware())
	admin.GET("/admin/pending", pendingReviewHandler)
	admin.GET("/admin/all", adminListHandler)
	admin.GET("/admin/export", exportCSVHandler)
	admin.GET("/admin/security-report", securityReportHandler)
	admin.POST("/admin/upload", adminUploadHandler)
	admin.PUT("/:id", updateJournalHandler)
	admin.POST("/publish/:id", publishJournalHandler)
	admin.POST("/archive/:id", archiveJournalHandler)
	admin.DELETE("/:id", deleteJournalHandler)
	admin.POST("/bulk-delete", bulkDeleteHandler)
	admin.POST("/bulk-archive", bulkArchiveHandler)
	admin.POST("/bulk-publish", bulkPublishHandler)
	admin.POST("/bulk-update", bulkUpdateHandler)

	adminContact := r.Group("/api/contact")
	adminContact.Use(jwtAuthMiddleware(), adminOnlyMiddleware())
	adminContact.GET("", listContactHandler)
	adminContact.GET("/:id", getContactHandler)
	adminContact.PATCH("/:id", updateContactHandler)
	adminContact.DELETE("/:id", deleteContactHandler)
}

// respond helpers keep the success/message envelope uniform. Raw error detail
// is only echoed outside production.
func respondOK(c *gin.Context, code int, message string, data gin.H) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func respondErr(c *gin.Context, code int, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if err != nil && os.Getenv("APP_ENV") != "production" {
		body["error"] = err.Error()
	}
	c.JSON(code, body)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			monitor.Record(security.EventUnauthorizedAccess, c.ClientIP(), c.Request.Method, c.FullPath(), c.Request.UserAgent(), "missing bearer token")
			respondErr(c, http.StatusUnauthorized, "missing or invalid Authorization header", nil)
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			monitor.Record(security.EventUnauthorizedAccess, c.ClientIP(), c.Request.Method, c.FullPath(), c.Request.UserAgent(), "invalid token")
			respondErr(c, http.StatusUnauthorized, "invalid token", nil)
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respondErr(c, http.StatusUnauthorized, "invalid claims", nil)
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role != "administrator" {
			monitor.Record(security.EventUnauthorizedAccess, c.ClientIP(), c.Request.Method, c.FullPath(), c.Request.UserAgent(), "admin route without admin role")
			respondErr(c, http.StatusForbidden, "administrator access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		respondErr(c, http.StatusInternalServerError, "context missing username", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string)})
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := RegisterUser(req.Username, req.Email, req.Password); err != nil {
		respondErr(c, http.StatusConflict, err.Error(), nil)
		return
	}
	respondOK(c, http.StatusOK, "user registered successfully", nil)
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		monitor.Record(security.EventFailedLogin, c.ClientIP(), c.Request.Method, c.FullPath(), c.Request.UserAgent(), req.Username)
		respondErr(c, http.StatusUnauthorized, err.Error(), nil)
		return
	}
	tokenString, err := issueAccessToken(user, 24*time.Hour)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to create refresh token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

func issueAccessToken(user models.User, ttl time.Duration) (string, error) {
	// Resolve role name from RoleID (we only store role_id).
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		respondErr(c, http.StatusUnauthorized, "invalid or expired refresh token", nil)
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		respondErr(c, http.StatusUnauthorized, "user not found", nil)
		return
	}
	tokenString, err := issueAccessToken(user, 15*time.Minute)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to rotate refresh token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		respondErr(c, http.StatusNotFound, "refresh token not found", nil)
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, "failed to revoke token", err)
		return
	}
	respondOK(c, http.StatusOK, "refresh token revoked", nil)
}

func securityReportHandler(c *gin.Context) {
	respondOK(c, http.StatusOK, "security report generated", gin.H{"report": monitor.Report()})
}
