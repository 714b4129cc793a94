// Package subst rewrites manifest files in place, replacing placeholder
// tokens of the form __TOKEN__ with configuration values.
//
// Replacement is literal substring substitution, not template expansion;
// values are never escaped or inspected and every occurrence of a token
// is replaced.
package subst

import (
	"fmt"
	"github.com/edgeworkers/k8sgen/pkg/config"
	"github.com/edgeworkers/k8sgen/pkg/util/stringset"
	"github.com/go-logr/logr"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Replacement maps one placeholder token to its resolved value.
type Replacement struct {
	Token string
	Value string
}

// Replacements returns the replacement list for cfg.
// The order is fixed; tokens are textually distinct and non-overlapping,
// so order does not affect the result.
func Replacements(cfg config.Config) []Replacement {
	return []Replacement{
		{"__NET_PREFIX__", cfg.NetPrefix},
		{"__EXTERNAL_IPS__", cfg.ExternalIPs},
		{"__IMAGE_PREFIX__", cfg.ImagePrefix},
		{"__IMAGE_SUFFIX__", cfg.ImageSuffix},
		{"__NAMESPACE__", cfg.Namespace},
		{"__TIKV_CLUSTER__", cfg.TiKVCluster},
		{"__MAYBE_PULL_SECRETS__", PullSecrets(cfg.ImagePullSecret)},
	}
}

// PullSecrets returns the imagePullSecrets manifest fragment for a
// secret name, or an empty string when no name is configured.
//
// Replacement is literal, so the fragment can not be re-indented per
// file; the continuation line carries the absolute indent for the
// token's documented placement, the pod spec level (column 6) of a
// Deployment manifest.
func PullSecrets(name string) string {
	if name == "" {
		return ""
	}
	return "imagePullSecrets:\n        - name: \"" + name + "\""
}

// IsManifest returns true for files the substitution and apply rules select.
func IsManifest(path string) bool {
	return filepath.Ext(path) == ".yaml"
}

// Run rewrites every manifest under dir.
// Files that are not manifests are left untouched.
func Run(log logr.Logger, dir string, rs []Replacement) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !IsManifest(path) {
			return nil
		}

		err = file(log, path, info.Mode(), rs)
		if err != nil {
			return fmt.Errorf("substitute %s: %w", path, err)
		}
		return nil
	})
}

// File rewrites a single manifest in place, preserving its mode.
func file(log logr.Logger, path string, mode os.FileMode, rs []Replacement) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	txt := string(b)
	for _, r := range rs {
		txt = strings.ReplaceAll(txt, r.Token, r.Value)
	}

	if u := unresolved(txt); u.Cardinality() > 0 {
		s := u.ToSlice()
		sort.Strings(s)
		log.V(1).Info("unresolved markers", "file", path, "markers", s)
	}

	return ioutil.WriteFile(path, []byte(txt), mode.Perm())
}

var markerRE = regexp.MustCompile(`__[A-Z0-9_]+__`)

// Unresolved returns marker-like strings that remain after substitution.
// A leftover marker is reported, not an error; manifest text may
// legitimately contain strings that look like markers.
func unresolved(txt string) stringset.Set {
	return stringset.New(markerRE.FindAllString(txt, -1)...)
}
