// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files and
// from the environment. Each file in the directory represents one secret:
// the filename is the key name and the file contents (trimmed) are the value.
//
// Known key files: scholar-inbox-url, slack-bot-token, slack-channel-id,
// anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Key names of the known secrets.
const (
	ScholarInboxURL = "scholar-inbox-url"
	SlackBotToken   = "slack-bot-token"
	SlackChannelID  = "slack-channel-id"
	AnthropicAPIKey = "anthropic-api-key"
)

// EnvVars maps each known key to the environment variable that can supply
// it.
var EnvVars = map[string]string{
	ScholarInboxURL: "SCHOLAR_INBOX_SECRET_URL",
	SlackBotToken:   "SLACK_BOT_TOKEN",
	SlackChannelID:  "SLACK_CHANNEL_ID",
	AnthropicAPIKey: "ANTHROPIC_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadWithEnv reads dir like Load and then applies the environment: a
// known key whose variable is set takes the variable's value.
func LoadWithEnv(dir string, getenv func(string) string) (map[string]string, error) {
	secrets, err := Load(dir)
	if err != nil {
		return nil, err
	}
	for key, env := range EnvVars {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			secrets[key] = v
		}
	}
	return secrets, nil
}

// Names returns the loaded key names in sorted order, for display.
func Names(secrets map[string]string) []string {
	names := make([]string, 0, len(secrets))
	for k := range secrets {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Missing returns the required keys that have no value, each with its
// environment variable, e.g. "slack-bot-token (SLACK_BOT_TOKEN)".
func Missing(secrets map[string]string, required ...string) []string {
	var missing []string
	for _, key := range required {
		if secrets[key] != "" {
			continue
		}
		if env, ok := EnvVars[key]; ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", key, env))
		} else {
			missing = append(missing, key)
		}
	}
	return missing
}
