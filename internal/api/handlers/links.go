// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"linklift/internal/clicks"
	"linklift/internal/database/models"
	"linklift/internal/database/repositories"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// LinkHandler handles short URL creation and redirect traffic
type LinkHandler struct {
	urlRepo  repositories.ShortURLRepository
	recorder *clicks.Recorder
	logger   *pterm.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(urlRepo repositories.ShortURLRepository, recorder *clicks.Recorder, logger *pterm.Logger) *LinkHandler {
	return &LinkHandler{
		urlRepo:  urlRepo,
		recorder: recorder,
		logger:   logger,
	}
}

type createURLRequest struct {
	OriginalURL string `json:"original_url" binding:"required"`
	UserID      uint   `json:"user_id" binding:"required"`
	TeamID      uint   `json:"team_id" binding:"required"`
	Code        string `json:"code"`
}

// CreateShortURL registers a new short link. A custom code may be
// supplied; otherwise one is derived from a fresh UUID.
func (h *LinkHandler) CreateShortURL(c *gin.Context) {
	var req createURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	parsed, err := url.Parse(req.OriginalURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original_url must be an absolute http(s) URL"})
		return
	}

	code := req.Code
	if code == "" {
		code = generateCode()
	} else if !validCode(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code must be 4-16 alphanumeric characters"})
		return
	}

	shortURL := &models.ShortURL{
		Code:        code,
		OriginalURL: req.OriginalURL,
		UserID:      req.UserID,
		TeamID:      req.TeamID,
	}
	if err := h.urlRepo.Create(shortURL); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") {
			c.JSON(http.StatusConflict, gin.H{"error": "code already in use"})
			return
		}
		h.logger.WithCaller().Error("Failed to create short URL", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create short URL"})
		return
	}

	h.logger.Info("Created short URL",
		h.logger.Args("code", shortURL.Code, "team_id", shortURL.TeamID))
	c.JSON(http.StatusCreated, shortURL)
}

// Redirect resolves a short code and issues the redirect. Click
// recording is queued in the background: the visitor is never made to
// wait on analytics, and a saturated queue only loses the click, not
// the redirect.
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	shortURL, err := h.urlRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "short URL not found"})
			return
		}
		h.logger.WithCaller().Error("Failed to look up short URL", h.logger.Args("code", code, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	h.recorder.Enqueue(clicks.Click{
		URLID:      shortURL.ID,
		UserID:     shortURL.UserID,
		TeamID:     shortURL.TeamID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		RefererURL: c.Request.Referer(),
	})

	if err := h.urlRepo.IncrementClickCount(shortURL.ID); err != nil {
		h.logger.Debug("Failed to bump click counter", h.logger.Args("code", code, "error", err))
	}

	c.Redirect(http.StatusFound, shortURL.OriginalURL)
}

// ListURLs returns a team's short URLs, newest first.
func (h *LinkHandler) ListURLs(c *gin.Context) {
	teamID, ok := parseTeamID(c)
	if !ok {
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 500 {
			limit = val
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	urls, err := h.urlRepo.ListByTeam(teamID, limit, offset)
	if err != nil {
		h.logger.WithCaller().Error("Failed to list short URLs", h.logger.Args("team_id", teamID, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list short URLs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"urls": urls, "count": len(urls)})
}

// DeleteURL removes a team's short link. The code must belong to the
// team in the path; a foreign code reads as not found so existence is
// not leaked across tenants. Recorded clicks are kept.
func (h *LinkHandler) DeleteURL(c *gin.Context) {
	teamID, ok := parseTeamID(c)
	if !ok {
		return
	}
	code := c.Param("code")

	shortURL, err := h.urlRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "short URL not found"})
			return
		}
		h.logger.WithCaller().Error("Failed to look up short URL", h.logger.Args("code", code, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if shortURL.TeamID != teamID {
		c.JSON(http.StatusNotFound, gin.H{"error": "short URL not found"})
		return
	}

	if err := h.urlRepo.Delete(shortURL.ID); err != nil {
		h.logger.WithCaller().Error("Failed to delete short URL", h.logger.Args("code", code, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete short URL"})
		return
	}

	h.logger.Info("Deleted short URL", h.logger.Args("code", code, "team_id", teamID))
	c.JSON(http.StatusOK, gin.H{"deleted": code})
}

// generateCode derives an 8 character short code from a UUID.
func generateCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func validCode(code string) bool {
	if len(code) < 4 || len(code) > 16 {
		return false
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// parseTeamID reads the :id path parameter shared by the team-scoped
// routes. It writes the error response itself so handlers can bail with
// a bare return.
func parseTeamID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid team id"})
		return 0, false
	}
	return uint(id), true
}
