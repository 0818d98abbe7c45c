package cfg

type Cfg struct {
	// Application configuration
	Port         string
	BaseUrl      string
	RegistryFile string
	SiteConfigDB string
	APIAccessKey string

	// Fetch layer configuration
	UserAgent    string
	FetchTimeout int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
