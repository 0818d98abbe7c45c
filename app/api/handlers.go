package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/sites"
)

// GetFeed serves the assembled JSON Feed for a registered site name.
func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	handler, site, err := h.registry.Lookup(name)
	if err != nil {
		slog.Error("Site not registered", "site", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	opts := applyQueryOptions(c, site.Options())

	result, err := handler.GetFeed(c.Request.Context(), c.Query("url"), opts)
	if err != nil {
		if errors.Is(err, sites.ErrNoFeed) {
			slog.Error("No feed available", "site", name, "error", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "No feed available for this site"})
			return
		}
		slog.Error("Feed assembly error", "site", name, "error", err)
		c.Status(http.StatusBadGateway)
		return
	}

	if result.FeedURL == "" && h.baseURL != "" {
		result.FeedURL = h.baseURL + "/feeds/" + name
	}

	c.Header("Content-Type", "application/feed+json; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(result.Items)))
	c.Header("X-Feed-Name", name)

	c.JSON(http.StatusOK, result)
}

// GetContent serves the normalized item for a single content URL, dispatched
// to the handler registered for the URL's host.
func (h *Handler) GetContent(c *gin.Context) {
	itemURL := c.Query("url")
	if itemURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url query parameter"})
		return
	}

	handler, site, err := h.registry.Resolve(itemURL)
	if err != nil {
		slog.Error("No handler for URL", "url", itemURL, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "No handler registered for this host"})
		return
	}

	opts := applyQueryOptions(c, site.Options())

	item, err := handler.GetContent(c.Request.Context(), itemURL, opts)
	if err != nil {
		slog.Error("Content extraction error", "url", itemURL, "site", site.Name, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to extract content"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":    time.Now().In(time.Local).Format(time.RFC3339),
		"loaded_sites": h.registry.Count(),
	})
}

// APIListSites returns the full registry contents for operators.
func (h *Handler) APIListSites(c *gin.Context) {
	registered := h.registry.Sites()

	list := make([]gin.H, 0, len(registered))
	for _, site := range registered {
		list = append(list, gin.H{
			"name":         site.Name,
			"handler":      site.Handler,
			"host":         site.Host,
			"brand":        site.Brand,
			"max_items":    site.Settings.MaxItems,
			"max_age_days": site.Settings.MaxAgeDays,
			"includes":     len(site.Filters.Includes),
			"excludes":     len(site.Filters.Excludes),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sites": list,
		"total": len(list),
	})
}

// APIReloadSites re-reads the registry file and rebuilds all handlers.
func (h *Handler) APIReloadSites(c *gin.Context) {
	if err := h.registry.Run(); err != nil {
		slog.Error("Error reloading site registry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload site registry",
			"details": err.Error(),
		})
		return
	}

	slog.Info("Site registry reloaded", "sites", h.registry.Count())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sites":   h.registry.Count(),
	})
}

// applyQueryOptions overlays per-request query parameters on the site's
// configured defaults. Unparsable values are ignored, not rejected.
func applyQueryOptions(c *gin.Context, opts feed.Options) feed.Options {
	if raw := c.Query("max"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			opts.MaxItems = n
		}
	}
	if raw := c.Query("age"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			opts.MaxAge = time.Duration(days) * 24 * time.Hour
		}
	}
	if raw := c.Query("embed"); raw != "" {
		if embed, err := strconv.ParseBool(raw); err == nil {
			opts.EmbedPreview = embed
		}
	}
	return opts
}
