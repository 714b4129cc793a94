package tool

import (
	"fmt"
	"github.com/edgeworkers/k8sgen/pkg/config"
	"github.com/edgeworkers/k8sgen/pkg/subst"
	"github.com/go-logr/logr"
	"path/filepath"
)

// Tool stamps a deployment tree out of a directory of manifest templates.
// It loads a config file, copies the template directory to a fresh
// suffix-named output directory, substitutes placeholder tokens in the
// copied manifests and writes an executable apply script.
//
// A run is a single forward pass; every stage failure is terminal.
// A partial output tree is left in place for inspection and replaced
// wholesale by the next run with the same suffix.
type Tool struct {
	// ConfigFilepath refers to a KEY=value (or flat yaml) file with
	// the substitution values.
	ConfigFilepath string
	// Suffix distinguishes output trees generated from the same templates.
	Suffix string
	// TemplateDir is the directory the manifests are copied from.
	// It is never mutated.
	TemplateDir string
	// OutDir is the directory the output tree is created in.
	OutDir string
	// Kubectl is the binary name written into the generated apply script.
	Kubectl string

	Log logr.Logger
}

// OutBase is the fixed first part of the output directory name.
const OutBase = "k8s"

// New returns a Tool that stamps templateDir into outDir/k8s.<suffix>
// with values from configFile.
func New(log logr.Logger, configFile, suffix, templateDir, outDir, kubectl string) *Tool {
	return &Tool{
		ConfigFilepath: configFile,
		Suffix:         suffix,
		TemplateDir:    templateDir,
		OutDir:         outDir,
		Kubectl:        kubectl,
		Log:            log,
	}
}

// Run runs the Tool.
// Nothing is written before the config validates.
func (t *Tool) Run() error {
	cfg, err := config.Load(t.ConfigFilepath)
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("config %s: %w", t.ConfigFilepath, err)
	}
	t.Log.V(1).Info("config loaded", "path", t.ConfigFilepath)

	out := t.OutPath()
	err = replaceDir(t.TemplateDir, out, t.Suffix)
	if err != nil {
		return err
	}
	t.Log.Info("copied templates", "from", t.TemplateDir, "to", out)

	err = subst.Run(t.Log, out, subst.Replacements(cfg))
	if err != nil {
		return fmt.Errorf("substitute: %w", err)
	}

	p, n, err := writeApplyScript(out, t.Kubectl)
	if err != nil {
		return fmt.Errorf("apply script: %w", err)
	}
	t.Log.Info("wrote apply script", "path", p, "manifests", n)

	return nil
}

// OutPath returns the path of the output tree for the configured suffix.
func (t *Tool) OutPath() string {
	return filepath.Join(t.OutDir, OutBase+"."+t.Suffix)
}
