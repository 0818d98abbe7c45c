package sites

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/feedloom/feedloom/app/feed"
	"github.com/feedloom/feedloom/app/fetch"
	"github.com/feedloom/feedloom/app/sitecfg"
)

// Site is one registry entry: which handler serves a host, plus the
// per-site settings and filter rules applied at assembly time.
type Site struct {
	Name       string       `yaml:"-"` // registry key
	Handler    string       `yaml:"handler"`
	Host       string       `yaml:"host"`
	Brand      string       `yaml:"brand"`
	ListingURL string       `yaml:"listing_url"`
	APIBase    string       `yaml:"api_base"`
	Settings   SiteSettings `yaml:"settings"`
	Filters    SiteFilters  `yaml:"filters"`
}

type SiteSettings struct {
	MaxItems   int `yaml:"max_items"`
	MaxAgeDays int `yaml:"max_age_days"`
}

type SiteFilters struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Options converts the site's configured defaults into the handler option bag.
func (s *Site) Options() feed.Options {
	return feed.Options{
		MaxItems: s.Settings.MaxItems,
		MaxAge:   time.Duration(s.Settings.MaxAgeDays) * 24 * time.Hour,
		Includes: s.Filters.Includes,
		Excludes: s.Filters.Excludes,
	}
}

type registryFile struct {
	Sites map[string]Site `yaml:"sites"`
}

type entry struct {
	site    *Site
	handler Handler
}

// Registry maps site names and hostnames to handlers. Handlers are built
// once when the registry loads, not resolved per request.
type Registry struct {
	file   string
	client *fetch.Client
	store  *sitecfg.Store

	mu     sync.RWMutex
	byName map[string]*entry
	byHost map[string]*entry
}

func NewRegistry(file string, client *fetch.Client, store *sitecfg.Store) *Registry {
	return &Registry{
		file:   file,
		client: client,
		store:  store,
		byName: make(map[string]*entry),
		byHost: make(map[string]*entry),
	}
}

// Run loads the registry file and builds a handler per site.
func (r *Registry) Run() error {
	data, err := os.ReadFile(r.file)
	if err != nil {
		return fmt.Errorf("failed to read site registry: %w", err)
	}

	var parsed registryFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse site registry: %w", err)
	}

	byName := make(map[string]*entry, len(parsed.Sites))
	byHost := make(map[string]*entry, len(parsed.Sites))

	for name, site := range parsed.Sites {
		site.Name = name
		applyDefaults(&site)

		if err := validateSite(&site); err != nil {
			return fmt.Errorf("invalid site %q: %w", name, err)
		}

		handler, err := r.buildHandler(&site)
		if err != nil {
			return fmt.Errorf("failed to build handler for site %q: %w", name, err)
		}

		e := &entry{site: &site, handler: handler}
		byName[name] = e
		byHost[site.Host] = e

		slog.Debug("Site registered", "site", name, "handler", site.Handler, "host", site.Host)
	}

	r.mu.Lock()
	r.byName = byName
	r.byHost = byHost
	r.mu.Unlock()

	return nil
}

func (r *Registry) buildHandler(site *Site) (Handler, error) {
	switch site.Handler {
	case "wire":
		return NewWireHandler(site, r.client), nil
	case "article":
		return NewArticleHandler(site, r.client), nil
	case "podcast":
		return NewPodcastHandler(site, r.client), nil
	case "tube":
		return NewTubeHandler(site, r.client, r.store), nil
	case "social":
		return NewSocialHandler(site, r.client, r), nil
	default:
		return nil, fmt.Errorf("unknown handler type %q", site.Handler)
	}
}

// Lookup returns the handler and site for a registered site name.
func (r *Registry) Lookup(name string) (Handler, *Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byName[name]
	if !ok {
		return nil, nil, fmt.Errorf("site %q not registered", name)
	}
	return e.handler, e.site, nil
}

// Resolve dispatches an item URL to the handler registered for its host.
func (r *Registry) Resolve(rawURL string) (Handler, *Site, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, nil, fmt.Errorf("unresolvable URL %q", rawURL)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byHost[parsed.Host]
	if !ok {
		return nil, nil, fmt.Errorf("no handler registered for host %q", parsed.Host)
	}
	return e.handler, e.site, nil
}

// Sites returns a snapshot of all registered sites.
func (r *Registry) Sites() []*Site {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sites := make([]*Site, 0, len(r.byName))
	for _, e := range r.byName {
		sites = append(sites, e.site)
	}
	return sites
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

func applyDefaults(site *Site) {
	if site.Settings.MaxItems == 0 {
		site.Settings.MaxItems = 20
	}
}

func validateSite(site *Site) error {
	if site.Handler == "" {
		return fmt.Errorf("handler is required")
	}
	if site.Host == "" {
		return fmt.Errorf("host is required")
	}
	if site.Brand == "" {
		return fmt.Errorf("brand is required")
	}
	if site.Settings.MaxItems < 0 {
		return fmt.Errorf("max_items must be non-negative")
	}
	if site.Settings.MaxAgeDays < 0 {
		return fmt.Errorf("max_age_days must be non-negative")
	}
	return nil
}
