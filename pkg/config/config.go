// Package config loads the values that drive manifest substitution.
package config

// Config file format.
// Either one KEY=value per line:
//
//		# deployment target
//		NAMESPACE=prod
//		export IMAGE_PREFIX="registry.example.com/"
//
// or, when the file ends in .yaml/.yml, a flat yaml mapping:
//
//		NAMESPACE: prod
//		IMAGE_PREFIX: "registry.example.com/"
//		NET_PREFIX: "10.0"
//
// Quote numeric-looking yaml values: an unquoted 10.0 decodes as a
// number and ends up as the string "10".
//
// The KEY=value form is declarative only; it is never sourced by a shell,
// so a config file can not execute code.

import (
	"fmt"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	yaml2 "gopkg.in/yaml.v2"
	"io/ioutil"
	"path/filepath"
	"regexp"
	"strings"
)

// Config are the values substituted into the manifest templates.
// It is passed by value between the pipeline stages.
type Config struct {
	// NetPrefix is the cluster network prefix, for example "10.0".
	NetPrefix string `config:"NET_PREFIX"`
	// ExternalIPs are the IPs the proxy service is exposed on.
	ExternalIPs string `config:"EXTERNAL_IPS"`
	// ImagePrefix is prepended to image names, for example "registry.example.com/".
	ImagePrefix string `config:"IMAGE_PREFIX"`
	// ImageSuffix is appended to image names, for example ":v1.2". May be empty.
	ImageSuffix string `config:"IMAGE_SUFFIX"`
	// Namespace is the target namespace.
	Namespace string `config:"NAMESPACE"`
	// TiKVCluster are the PD endpoints of the TiKV cluster.
	TiKVCluster string `config:"TIKV_CLUSTER"`
	// ImagePullSecret names the pull secret; empty means the
	// imagePullSecrets fragment is omitted from the manifests.
	ImagePullSecret string `config:"IMAGE_PULL_SECRET"`
}

// Load reads and decodes the config file at path.
// The result is not validated; see Validate.
func Load(path string) (Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config file: %w", err)
	}

	var kv map[string]interface{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml2.Unmarshal(b, &kv)
	default:
		kv, err = parseEnv(b)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return decode(kv)
}

// Validate checks that all required keys have a non-empty value.
// All missing keys are reported, not just the first.
func (c Config) Validate() error {
	var err *multierror.Error

	for _, kv := range []struct{ key, value string }{
		{"NET_PREFIX", c.NetPrefix},
		{"EXTERNAL_IPS", c.ExternalIPs},
		{"IMAGE_PREFIX", c.ImagePrefix},
		{"NAMESPACE", c.Namespace},
		{"TIKV_CLUSTER", c.TiKVCluster},
	} {
		if kv.value == "" {
			err = multierror.Append(err, fmt.Errorf("required key %s is missing or empty", kv.key))
		}
	}
	// IMAGE_SUFFIX and IMAGE_PULL_SECRET may be empty.

	return err.ErrorOrNil()
}

// Decode turns a dynamic key-value mapping into a Config.
// Keys without a Config field are ignored.
func decode(kv map[string]interface{}) (Config, error) {
	var c Config

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		Result:           &c,
	})
	if err != nil {
		return c, err
	}
	err = dec.Decode(kv)
	if err != nil {
		return c, err
	}

	return c, nil
}

var keyRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseEnv parses KEY=value lines.
// Blank lines and # comments are skipped, an "export " prefix is
// tolerated and single or double quotes around a value are stripped.
// Later assignments override earlier ones.
func parseEnv(text []byte) (map[string]interface{}, error) {
	r := map[string]interface{}{}

	for i, line := range strings.Split(string(text), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		s = strings.TrimPrefix(s, "export ")

		kv := strings.SplitN(s, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("line %d: expected KEY=value, got: %s", i+1, line)
		}
		k := strings.TrimSpace(kv[0])
		if !keyRE.MatchString(k) {
			return nil, fmt.Errorf("line %d: invalid key: %s", i+1, k)
		}

		r[k] = unquote(strings.TrimSpace(kv[1]))
	}

	return r, nil
}

// Unquote strips one pair of matching single or double quotes.
// No escape processing takes place; values are taken literally.
func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
