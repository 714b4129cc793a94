package tool

import (
	"fmt"
	"github.com/edgeworkers/k8sgen/pkg/subst"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// ApplyScript is the name of the generated script.
const ApplyScript = "apply.sh"

// WriteApplyScript writes an executable script in dir that applies every
// manifest under dir, one invocation per file in traversal order.
// The script changes to its own directory first so it works regardless
// of the caller's working directory.
// It returns the script path and the number of manifests listed.
func writeApplyScript(dir, kubectl string) (string, int, error) {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("cd \"$(dirname \"$0\")\"\n")

	n := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !subst.IsManifest(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "%s apply -f '%s'\n", kubectl, filepath.ToSlash(rel))
		n++
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	p := filepath.Join(dir, ApplyScript)
	err = ioutil.WriteFile(p, []byte(b.String()), 0755)
	if err != nil {
		return "", 0, err
	}

	return p, n, nil
}
