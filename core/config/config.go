// Package config loads and validates the shell configuration.
package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the file name looked up inside the config directory.
const ConfigurationName = "config.yaml"

type Configuration struct {
	// Prompt is the prompt template. Supported expansions: \# for the
	// command number, \w for the working directory, \$ for the prompt
	// character.
	Prompt string `json:"prompt" validate:"required"`

	// Path is the executable search path used when $PATH is unset.
	Path []string `json:"path" validate:"required,min=1"`

	// NotifyDone reports finished background jobs before each prompt.
	NotifyDone bool `json:"notify_done"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}
