package conf

/*
   This is a package that wraps viper, a package designed to handle config
   files, for the BPP. Values are looked up in the local.env configuration
   file first and then in the process environment.

   Assumptions:
   1. The configuration file is a env file
   2. The configuration file, once it is made available to the application,
   will stay immutable during the uptime of the application (exception is test)
*/

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// An instance of the viper struct containing the conf information. Only made
// accessible through public functions GetEnv, SetEnv, etc.
var envVars *viper.Viper

const (
	configgood    uint8 = 0
	configbad     uint8 = 1
	noconfigfound uint8 = 2
)

var state = configgood

const (
	tagName        = "conf"
	defaultTagName = "conf_default"
)

func setup(dir string) *viper.Viper {
	var v = viper.New()
	v.SetConfigName("local")
	v.SetConfigType("env")
	v.AddConfigPath(dir)

	// Viper is lazy, do the read and parse of the config file
	if err := v.ReadInConfig(); err != nil {
		state = configbad
	}

	return v
}

func init() {
	var locations = []string{
		os.Getenv("BPP_CONF_DIR"),
		"../shared_files/decrypted",
		".",
	}

	if success, loc := findEnv(locations); success {
		envVars = setup(loc)
	} else {
		state = noconfigfound
	}
}

// findEnv walks the candidate directories and reports the first one holding a local.env file.
func findEnv(location []string) (bool, string) {
	if len(location) == 0 {
		return false, ""
	}

	if location[0] != "" {
		if _, err := os.Stat(location[0] + "/local.env"); err == nil {
			return true, location[0]
		}
	}

	return findEnv(location[1:])
}

// GetEnv retrieves the value stored in conf. If it does not exist "" is returned.
func GetEnv(key string) string {
	value, _ := LookupEnv(key)
	return value
}

// LookupEnv augments os.LookupEnv to look in the viper struct first.
func LookupEnv(key string) (string, bool) {
	if state == configgood {
		if value := envVars.GetString(key); value != "" {
			return value, true
		}
	}

	return os.LookupEnv(key)
}

// SetEnv adds key values into conf. The protect parameter is there to ensure
// developers knowingly use it in tests only.
func SetEnv(protect *testing.T, key string, value string) error {
	if state == configgood {
		envVars.Set(key, value)
		return nil
	}

	return os.Setenv(key, value)
}

// UnsetEnv removes the key from conf and from the environment.
func UnsetEnv(protect *testing.T, key string) error {
	if state == configgood {
		envVars.Set(key, "")
	}

	return os.Unsetenv(key)
}

// Checkout fills the struct pointed to by v from conf. Fields are matched by
// their `conf` tag (or their name when untagged) and fall back to the value in
// the `conf_default` tag. Embedded structs and `conf:",squash"` fields are
// flattened.
func Checkout(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.New("conf: Checkout requires a non-nil pointer to a struct")
	}

	values := make(map[string]interface{})
	collect(rv.Elem().Type(), values)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           v,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("conf: failed to decode configuration: %w", err)
	}

	return nil
}

func collect(t reflect.Type, values map[string]interface{}) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" && !field.Anonymous {
			continue
		}

		name, opts := parseTag(field.Tag.Get(tagName))
		if name == "-" {
			continue
		}

		if field.Type.Kind() == reflect.Struct && (field.Anonymous || opts == "squash") {
			collect(field.Type, values)
			continue
		}

		if name == "" {
			name = field.Name
		}

		if value, ok := LookupEnv(name); ok && value != "" {
			values[name] = value
		} else if def, ok := field.Tag.Lookup(defaultTagName); ok {
			values[name] = def
		}
	}
}

func parseTag(tag string) (name, opts string) {
	if idx := strings.Index(tag, ","); idx != -1 {
		return tag[:idx], tag[idx+1:]
	}
	return tag, ""
}
