package auth

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const serviceName = "filtertranslate"

// Source names where a key was found.
const (
	SourceKeychain = "Keychain"
	SourceEnv      = "Environment Variable"
)

type credential struct {
	account string
	envVar  string
}

var services = map[string]credential{
	"gemini": {account: "gemini-api-key", envVar: "GEMINI_API_KEY"},
	"openai": {account: "openai-api-key", envVar: "OPENAI_API_KEY"},
}

// Services lists the backends that authenticate with an API key.
func Services() []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(service string) (credential, error) {
	c, ok := services[strings.ToLower(strings.TrimSpace(service))]
	if !ok {
		return credential{}, fmt.Errorf("unknown service %q (expected one of %s)", service, strings.Join(Services(), ", "))
	}
	return c, nil
}

// EnvVar returns the environment variable consulted for service.
func EnvVar(service string) string {
	c, err := lookup(service)
	if err != nil {
		return ""
	}
	return c.envVar
}

// GetKey retrieves the API key for service from the keychain, then from the
// environment when allowEnv is set. It returns the key and where it was found.
func GetKey(service string, allowEnv bool) (string, string) {
	c, err := lookup(service)
	if err != nil {
		return "", ""
	}
	key, err := keyring.Get(serviceName, c.account)
	if err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceKeychain
	}
	if allowEnv {
		if key, ok := GetEnvKey(service); ok {
			return key, SourceEnv
		}
	}
	return "", ""
}

// SaveKey saves the key for service to the OS keychain.
func SaveKey(service, key string) error {
	c, err := lookup(service)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	return keyring.Set(serviceName, c.account, key)
}

// DeleteKey removes the key for service from the OS keychain.
func DeleteKey(service string) error {
	c, err := lookup(service)
	if err != nil {
		return err
	}
	return keyring.Delete(serviceName, c.account)
}

// GetStatus reports whether the keychain holds a key for service.
func GetStatus(service string) bool {
	c, err := lookup(service)
	if err != nil {
		return false
	}
	key, err := keyring.Get(serviceName, c.account)
	return err == nil && key != ""
}

// PromptForAPIKey reads a key from the terminal without echo.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(bytePassword)), nil
}

// GetEnvKey retrieves the key from the environment only.
func GetEnvKey(service string) (string, bool) {
	c, err := lookup(service)
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(os.Getenv(c.envVar))
	if key == "" {
		return "", false
	}
	return key, true
}
