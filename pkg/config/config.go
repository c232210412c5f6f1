// Package config YAML configuration with struct tag defaults and file watching
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/radovskyb/watcher"
	"gopkg.in/yaml.v3"

	"github.com/forest33/arena/pkg/logger"
	"github.com/forest33/arena/pkg/structs"
)

const (
	EnvConfigPath = "ARENA_CONFIG"

	tagDefault = "default"
)

type Config struct {
	path      string
	data      interface{}
	log       *logger.Logger
	observers []func(interface{})
	mux       sync.Mutex
}

// New reads the configuration file into cfg. The path is taken from ARENA_CONFIG,
// otherwise configFileName is looked up in configFileDir or next to the executable.
// A missing file is not an error, every field gets its default value.
func New(configFileName, configFileDir string, cfg interface{}) (*Config, error) {
	path, err := resolvePath(configFileName, configFileDir)
	if err != nil {
		return nil, err
	}

	c := &Config{
		path:      path,
		data:      cfg,
		observers: make([]func(interface{}), 0, 1),
		log:       logger.NewDefault(),
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

func resolvePath(configFileName, configFileDir string) (string, error) {
	if path, ok := os.LookupEnv(EnvConfigPath); ok {
		return path, nil
	}
	if filepath.IsAbs(configFileName) {
		return configFileName, nil
	}
	if configFileDir != "" {
		return filepath.Join(configFileDir, configFileName), nil
	}
	ex, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(ex), configFileName), nil
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err = yaml.Unmarshal(data, c.data); err != nil {
		return err
	}
	return Parse(c.data)
}

func (c *Config) Update(data interface{}) {
	c.data = data
}

func (c *Config) Save() error {
	buf, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, buf, 0664); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) GetPath() string {
	return c.path
}

// AddObserver registers f to be called with the reloaded configuration
// every time the file is written. The watcher starts with the first observer.
func (c *Config) AddObserver(f func(interface{})) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if len(c.observers) == 0 {
		if err := c.startWatcher(); err != nil {
			return err
		}
	}
	c.observers = append(c.observers, f)

	return nil
}

func (c *Config) startWatcher() error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)
	if err := w.Add(c.path); err != nil {
		return err
	}

	go func() {
		defer w.Close()
		if err := w.Start(time.Second); err != nil {
			c.log.Error().Err(err).Str("path", c.path).Msg("failed to start watching config file")
		}
	}()

	go func() {
		for {
			select {
			case <-w.Event:
				c.reload()
			case err := <-w.Error:
				c.log.Error().Err(err).Msg("error on watching config file")
			case <-w.Closed:
				return
			}
		}
	}()

	return nil
}

func (c *Config) reload() {
	c.log.Info().Str("path", c.path).Msg("config file changed")

	if err := c.load(); err != nil {
		c.log.Error().Err(err).Msg("failed to reload config file")
		return
	}

	c.mux.Lock()
	observers := c.observers
	c.mux.Unlock()

	for _, f := range observers {
		f(c.data)
	}
}

// Parse fills zero fields of target with the values of their `default` tags.
// Nested struct pointers are allocated and parsed recursively; a zero field
// without a default is reported as missing.
func Parse(target interface{}) error {
	ref := reflect.Indirect(reflect.ValueOf(target))
	for i := 0; i < ref.Type().NumField(); i++ {
		structField := ref.Type().Field(i)
		fieldValue := ref.Field(i)

		if isSet(structField, &fieldValue) {
			continue
		}

		if def, ok := structField.Tag.Lookup(tagDefault); ok {
			if err := setValue(structField, &fieldValue, def); err != nil {
				return err
			}
			continue
		}

		switch structField.Type.Kind() {
		case reflect.Ptr, reflect.Slice:
			if err := setValue(structField, &fieldValue, ""); err != nil {
				return err
			}
		case reflect.Bool:
		default:
			return fmt.Errorf("required configuration parameter is not specified - %s.%s", ref.Type().Name(), structField.Name)
		}
	}

	return nil
}

func isSet(structField reflect.StructField, field *reflect.Value) bool {
	switch structField.Type.Kind() {
	case reflect.Ptr:
		return structField.Type.Elem().Kind() != reflect.Struct && !field.IsNil()
	case reflect.Slice:
		return field.Len() > 0 && structField.Type.Elem().Kind() != reflect.Ptr
	}
	return !field.IsZero()
}

func setValue(structField reflect.StructField, field *reflect.Value, value string) error {
	switch structField.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if structField.Type == reflect.TypeOf(time.Duration(0)) {
			v, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(v))
			return nil
		}
		v, err := strconv.ParseInt(value, 10, int(structField.Type.Size()*8))
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(value, 10, int(structField.Type.Size()*8))
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, int(structField.Type.Size()*8))
		if err != nil {
			return err
		}
		field.SetFloat(v)
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		field.SetBool(strings.EqualFold(value, "true"))
	case reflect.Ptr:
		if structField.Type.Elem().Kind() == reflect.Bool {
			field.Set(reflect.ValueOf(structs.Ref(strings.EqualFold(value, "true"))))
			return nil
		}
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return Parse(field.Interface())
	case reflect.Slice:
		if len(value) > 0 {
			values := strings.Split(value, ",")
			sl := reflect.MakeSlice(field.Type(), len(values), len(values))
			for i, val := range values {
				sl.Index(i).Set(reflect.ValueOf(strings.TrimSpace(val)))
			}
			field.Set(sl)
			return nil
		}
		if field.Type().Elem().Kind() != reflect.Ptr {
			return nil
		}
		for i := 0; i < field.Len(); i++ {
			if err := Parse(field.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}
