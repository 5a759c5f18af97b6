package news

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type feedsFile struct {
	Feeds []feedSeed `yaml:"feeds"`
}

type feedSeed struct {
	URL string `yaml:"url"`
}

// LoadFeedsFile reads the default feed URLs from a YAML file. A missing file
// is not an error; the caller falls back to the built-in defaults.
func LoadFeedsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var file feedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	urls := make([]string, 0, len(file.Feeds))
	for _, seed := range file.Feeds {
		if seed.URL != "" {
			urls = append(urls, seed.URL)
		}
	}

	return urls, nil
}
