package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultEnvFile is read when Load is called without files
const defaultEnvFile = ".env"

// lookupFunc returns the raw value of a variable, or "" when it is unset
type lookupFunc func(name string) string

// Load reads configuration from environment variables and .env files and
// validates it. Variables set in the process environment take precedence over
// the files. Missing files are ignored. When no file is given, ./.env is tried.
func Load(envFiles ...string) (*Config, error) {
	cfg, err := Read(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for callers that override values before
// calling Validate themselves.
func Read(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{defaultEnvFile}
	}

	fileValues, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	lookup := func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		return fileValues[name]
	}

	cfg := &Config{}
	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	return cfg, nil
}

// readEnvFiles merges the files in order; later files win.
func readEnvFiles(paths []string) (map[string]string, error) {
	values := make(map[string]string)
	for _, path := range paths {
		fileValues, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}
	return values, nil
}

// loadStruct recursively populates struct fields from lookup.
func loadStruct(v reflect.Value, lookup lookupFunc) error {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")

		if envName == "" {
			continue
		}

		value := lookup(envName)
		if value == "" && envAlt != "" {
			value = lookup(envAlt)
		}

		if value == "" {
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}
	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int64:
		if field.Type() != reflect.TypeOf(time.Duration(0)) {
			return fmt.Errorf("unsupported field type: %s", field.Type())
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.Set(reflect.ValueOf(d))

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
