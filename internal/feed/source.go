// Package feed fetches and parses the configured RSS/Atom sources into
// explicit, partially-populated entries. Everything downstream treats an
// Entry as untrusted input.
package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one configured feed endpoint plus its display metadata.
// Sources are immutable after startup.
type Source struct {
	URL     string `yaml:"url" json:"url"`
	Name    string `yaml:"name" json:"name"`
	Website string `yaml:"website" json:"website"`
	Logo    string `yaml:"logo" json:"logo"`

	// TopicSpecific marks feeds whose URL is already scoped to the topic;
	// the relevance filter is bypassed for them.
	TopicSpecific bool `yaml:"topic_specific" json:"topicSpecific"`
}

type sourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the feed source list from a YAML file. A missing file
// is not an error: the built-in default list is returned so the service
// can start without any configuration.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSources(), nil
		}
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var cfg sourcesConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode sources config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		return DefaultSources(), nil
	}
	return cfg.Sources, nil
}

// DefaultSources returns the bundled feed list used when no sources file
// is configured. All three feeds are already scoped to AI coverage.
func DefaultSources() []Source {
	return []Source{
		{
			URL:           "https://techcrunch.com/category/artificial-intelligence/feed/",
			Name:          "TechCrunch",
			Website:       "https://techcrunch.com",
			Logo:          "https://techcrunch.com/wp-content/uploads/2021/01/TechCrunch_logo.png",
			TopicSpecific: true,
		},
		{
			URL:           "https://venturebeat.com/category/ai/feed/",
			Name:          "VentureBeat",
			Website:       "https://venturebeat.com",
			Logo:          "https://venturebeat.com/wp-content/uploads/2018/09/venturebeat-logo-rec.png?w=192",
			TopicSpecific: true,
		},
		{
			URL:           "https://www.wired.com/feed/tag/ai/latest/rss",
			Name:          "Wired",
			Website:       "https://www.wired.com",
			Logo:          "https://www.wired.com/assets/logo-header.png",
			TopicSpecific: true,
		},
	}
}
