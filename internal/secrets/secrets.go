// Package secrets stores credentials in the OS keychain, falling back to
// environment variables on headless hosts.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service groups this app's entries in the OS keychain.
const Service = "lknd"

// Names of the secrets the app knows how to resolve.
const (
	TelegramToken = "telegram_token"
	LLMAPIKey     = "llm_api_key"
	IMAPPassword  = "imap_password"
)

// EnvVar is the environment fallback for a secret name.
func EnvVar(name string) string {
	return "LKND_" + strings.ToUpper(name)
}

// Get looks the secret up in the keychain first, then the environment.
func Get(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("secret name is empty")
	}
	if v, err := keyring.Get(Service, name); err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	if v := os.Getenv(EnvVar(name)); strings.TrimSpace(v) != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %s not found (run `lknd secrets set %s` or export %s)", name, name, EnvVar(name))
}

// Set writes the secret to the keychain.
func Set(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(Service, name, value)
}

// Delete removes the secret from the keychain.
func Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	return keyring.Delete(Service, name)
}

// Resolve returns explicit when the configuration already carries the
// value, otherwise the named secret.
func Resolve(explicit, name string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	return Get(name)
}
