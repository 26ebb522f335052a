package testUtils

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/benefits-network/benefits-bpp/conf"
)

// CtxMatcher allow us to validate that the caller supplied a context.Context argument
// See: https://github.com/stretchr/testify/issues/519
var CtxMatcher = mock.MatchedBy(func(ctx context.Context) bool { return true })

func RandomHexID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "not_a_random_id"
	}
	return fmt.Sprintf("%x", b)
}

func setEnv(why, key, value string) {
	if err := conf.SetEnv(&testing.T{}, key, value); err != nil {
		log.Printf("Error %s env value %s to %s\n", why, key, value)
	}
}

// SetAndRestoreEnvKey replaces the current value of the env var key,
// returning a function which can be used to restore the original value
func SetAndRestoreEnvKey(key, value string) func() {
	originalValue := conf.GetEnv(key)
	setEnv("setting", key, value)
	return func() {
		setEnv("restoring", key, originalValue)
	}
}

// SetEnvVars sets every key for the duration of the test.
func SetEnvVars(t *testing.T, vars map[string]string) {
	for key, value := range vars {
		t.Cleanup(SetAndRestoreEnvKey(key, value))
	}
}

// RequiredEnv is a complete set of the configuration the API refuses to start without.
func RequiredEnv(strapiURL string) map[string]string {
	return map[string]string{
		"STRAPI_URL":          strapiURL,
		"STRAPI_TOKEN":        "test-token",
		"PROVIDER_UBA_UI_URL": "https://uba.example.org",
		"BPP_ID":              "bpp.example.org",
		"BPP_URI":             "https://bpp.example.org",
	}
}

// Fixture returns the content of a file under shared_files. Tests run from their
// package directory so the file is looked up in each parent directory.
func Fixture(t *testing.T, name string) []byte {
	dir := "."
	for i := 0; i < 4; i++ {
		dir = filepath.Join(dir, "..")
		data, err := os.ReadFile(filepath.Join(dir, "shared_files", filepath.Clean(name)))
		if err == nil {
			return data
		}
	}
	t.Fatalf("fixture %s not found in shared_files", name)
	return nil
}
