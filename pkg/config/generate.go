package config

import (
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dob9601/jointhedots/pkg/errors"
)

const generatedHeader = `# jtd configuration
#
# Every value below is the built-in default, commented out.
# Uncomment and edit the ones you want to change.

`

// GenerateConfigContent generates the configuration file content with commented values
func GenerateConfigContent() (string, error) {
	return generateFrom(Default())
}

// Render serializes a configuration as TOML
func Render(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return string(data), nil
}

func generateFrom(cfg *Config) (string, error) {
	content, err := Render(cfg)
	if err != nil {
		return "", err
	}
	return generatedHeader + commentOutConfigValues(content), nil
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Keep blank lines as-is
		if trimmed == "" {
			result = append(result, line)
			continue
		}

		// Keep lines that are already comments
		if strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		// Keep section headers (e.g., [repository], [commit]) as-is
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		// Comment out configuration value lines
		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
