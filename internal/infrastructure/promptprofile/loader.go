// Package promptprofile loads the enhancer persona and prompt wording from YAML.
package promptprofile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

// Load reads a profile from path. An empty path yields the built-in profile;
// fields missing from the file keep their defaults.
func Load(path string) (domain.PromptProfile, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultPromptProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PromptProfile{}, fmt.Errorf("read prompt profile: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (domain.PromptProfile, error) {
	var profile domain.PromptProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return domain.PromptProfile{}, fmt.Errorf("parse prompt profile: %w", err)
	}
	return profile.WithDefaults(), nil
}
