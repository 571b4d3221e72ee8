package config

// EndpointsFile is the on-disk schema of the locale endpoints file. The file
// is produced by the discovery collaborator; this service only reads it.
type EndpointsFile struct {
	Locales map[string]string `yaml:"locales"`
}
