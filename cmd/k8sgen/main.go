package main

import (
	"flag"
	"fmt"
	"github.com/edgeworkers/k8sgen/pkg/tool"
	"github.com/go-logr/stdr"
	stdlog "log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// Version as set during build.
	Version string

	templateDir = flag.String("t", "",
		`Directory containing the manifest templates (default "templates" next to the executable)`)
	outDir = flag.String("o", ".",
		`Directory the output tree is created in`)
	kubeCtl = flag.String("kubectl", "kubectl",
		`The binary the generated apply script invokes`)

	verbosity = flag.String("v", "0",
		`Log verbosity, higher numbers produce more output`)

	// Usage text argument: %[1]=program name, %[2]=program version.
	usage = `%[1]s %[2]s
%[1]s stamps out a deployment tree from parameterized manifests.
It copies the template directory to k8s.<suffix>, replaces __TOKEN__
placeholders in *.yaml files with values from the config file and writes
an apply.sh that applies every manifest in the tree.

The config file is a KEY=value list (or a flat yaml mapping when the
file ends in .yaml/.yml). Required keys: NET_PREFIX, EXTERNAL_IPS,
IMAGE_PREFIX, NAMESPACE, TIKV_CLUSTER. Optional: IMAGE_SUFFIX,
IMAGE_PULL_SECRET.

Re-running with the same suffix replaces the previous output directory.

Usage: %[1]s [options...] <config-file> <suffix>
`
)

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, usage, filepath.Base(os.Args[0]), Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if msg := validate(flag.Args()); len(msg) > 0 {
		_, _ = fmt.Fprintln(os.Stderr, "E", strings.Join(msg, ", "))
		os.Exit(1)
	}

	v, _ := strconv.Atoi(*verbosity)
	stdr.SetVerbosity(v)
	log := stdr.New(stdlog.New(os.Stderr, "I ", stdlog.Ltime))

	tl := tool.New(
		log,
		flag.Arg(0),
		flag.Arg(1),
		templatePath(),
		*outDir,
		*kubeCtl,
	)
	err := tl.Run()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "E", err)
		os.Exit(1)
	}
}

// Validate checks positional arguments and flags and returns a list of error strings.
func validate(args []string) []string {
	var r []string

	if len(args) < 1 {
		r = append(r, "missing argument: config file")
	} else if fi, err := os.Stat(args[0]); err != nil || !fi.Mode().IsRegular() {
		r = append(r, fmt.Sprintf("config file not found: %s", args[0]))
	}

	if len(args) < 2 {
		r = append(r, "missing argument: suffix")
	}

	if i, _ := strconv.Atoi(*verbosity); i < 0 || i > 5 {
		r = append(r, "-v should be in the range 0..5")
	}

	return r
}

// TemplatePath returns the template directory; the -t flag when given,
// otherwise "templates" next to the executable.
func templatePath() string {
	if *templateDir != "" {
		return *templateDir
	}

	exe, err := os.Executable()
	if err != nil {
		return "templates"
	}
	return filepath.Join(filepath.Dir(exe), "templates")
}
