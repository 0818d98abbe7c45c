package api

import (
	"github.com/feedloom/feedloom/app/sites"
)

type Handler struct {
	registry *sites.Registry
	baseURL  string
	version  string
}

func NewHandler(registry *sites.Registry, baseURL, version string) *Handler {
	return &Handler{
		registry: registry,
		baseURL:  baseURL,
		version:  version,
	}
}
