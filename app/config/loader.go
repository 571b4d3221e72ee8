package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Load reads the locale endpoints file and returns the locale → URL map.
// Entries with an unparseable locale tag or URL are skipped with a warning
// rather than failing the whole file: one bad line from the discovery
// collaborator must not take the monitor down.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale endpoints file: %w", err)
	}

	var file EndpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse locale endpoints file: %w", err)
	}

	endpoints := make(map[string]string, len(file.Locales))
	for code, rawURL := range file.Locales {
		if _, err := language.Parse(code); err != nil {
			slog.Warn("Skipping invalid locale code", "locale", code, "error", err)
			continue
		}

		u, err := url.Parse(rawURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			slog.Warn("Skipping locale with invalid URL", "locale", code, "url", rawURL)
			continue
		}

		endpoints[code] = rawURL
	}

	return endpoints, nil
}
