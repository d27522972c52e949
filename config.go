package main

import (
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/joynet.yml"

var Config map[interface{}]interface{}

// LoadConfig loads the configuration file at path.
// A missing file is not an error, every key keeps its default then.
func LoadConfig(path string) error {
	Config = make(map[interface{}]interface{})

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	return yaml.Unmarshal(data, &Config)
}

// ConfKey returns a key in the configuration,
// nested keys are separated by colons
func ConfKey(key string) interface{} {
	keys := strings.Split(key, ":")
	c := Config
	for i := 0; i < len(keys)-1; i++ {
		sub, ok := c[keys[i]].(map[interface{}]interface{})
		if !ok {
			return nil
		}
		c = sub
	}

	return c[keys[len(keys)-1]]
}

func confString(key, def string) string {
	if s, ok := ConfKey(key).(string); ok {
		return s
	}

	return def
}

func confInt(key string, def int) int {
	if n, ok := ConfKey(key).(int); ok {
		return n
	}

	return def
}
