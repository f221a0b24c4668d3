package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/kolah/apimodel/internal/grouping"
)

// DefaultFile is read when no --config flag is given and the file exists.
const DefaultFile = "apimodel.yaml"

type Config struct {
	Specs     []string     `koanf:"specs"`
	Workers   int          `koanf:"workers"`
	Output    OutputConfig `koanf:"output"`
	Generator Generator    `koanf:"generator"`
}

type OutputConfig struct {
	Dir    string `koanf:"dir"`
	Format string `koanf:"format"`
	Plugin string `koanf:"plugin"`
	DryRun bool   `koanf:"dry-run"`
}

// Generator controls which passes run and carries the rendering hints
// forwarded to emitters. It is passed by value and never shared mutably.
type Generator struct {
	GenerateContracts            bool   `koanf:"generate-contracts"`
	GenerateControllers          bool   `koanf:"generate-controllers"`
	UseRecords                   bool   `koanf:"use-records"`
	BaseNamespace                string `koanf:"base-namespace"`
	ContractsNamespace           string `koanf:"contracts-namespace"`
	ControllersNamespace         string `koanf:"controllers-namespace"`
	GenerateValidationAttributes bool   `koanf:"generate-validation-attributes"`
	GenerateXMLDocumentation     bool   `koanf:"generate-xml-documentation"`
	UseAsyncControllers          bool   `koanf:"use-async-controllers"`
	AddAPIControllerAttribute    bool   `koanf:"add-api-controller-attribute"`
	ControllerBaseClass          string `koanf:"controller-base-class"`
	ControllerGroupingStrategy   string `koanf:"controller-grouping-strategy"`
}

// DefaultGenerator returns the generator settings used when nothing is configured.
func DefaultGenerator() Generator {
	return Generator{
		GenerateContracts:            true,
		GenerateControllers:          true,
		UseRecords:                   true,
		BaseNamespace:                "Generated",
		ContractsNamespace:           "Contracts",
		ControllersNamespace:         "Controllers",
		GenerateValidationAttributes: true,
		GenerateXMLDocumentation:     true,
		UseAsyncControllers:          true,
		AddAPIControllerAttribute:    true,
		ControllerBaseClass:          "ControllerBase",
		ControllerGroupingStrategy:   string(grouping.ByTag),
	}
}

// Strategy returns the configured grouping strategy, ByTag when unset or unknown.
func (g Generator) Strategy() grouping.Strategy {
	s, err := grouping.ParseStrategy(g.ControllerGroupingStrategy)
	if err != nil {
		return grouping.ByTag
	}
	return s
}

// NothingToGenerate reports whether both the contract and the controller pass are disabled.
func (g Generator) NothingToGenerate() bool {
	return !g.GenerateContracts && !g.GenerateControllers
}

func defaults() map[string]any {
	g := DefaultGenerator()
	return map[string]any{
		"workers":       0,
		"output.dir":    "generated",
		"output.format": "yaml",

		"generator.generate-contracts":             g.GenerateContracts,
		"generator.generate-controllers":           g.GenerateControllers,
		"generator.use-records":                    g.UseRecords,
		"generator.base-namespace":                 g.BaseNamespace,
		"generator.contracts-namespace":            g.ContractsNamespace,
		"generator.controllers-namespace":          g.ControllersNamespace,
		"generator.generate-validation-attributes": g.GenerateValidationAttributes,
		"generator.generate-xml-documentation":     g.GenerateXMLDocumentation,
		"generator.use-async-controllers":          g.UseAsyncControllers,
		"generator.add-api-controller-attribute":   g.AddAPIControllerAttribute,
		"generator.controller-base-class":          g.ControllerBaseClass,
		"generator.controller-grouping-strategy":   g.ControllerGroupingStrategy,
	}
}

// BindFlags binds the generate flags to cmd.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultFile+")")
	flags.StringP("output-dir", "o", "", "Output directory for model files")
	flags.StringP("format", "f", "", "Model file format: yaml, json")
	flags.String("plugin", "", "Run apimodel-<plugin> with the model instead of writing files")
	flags.IntP("workers", "w", 0, "Documents processed in parallel (0: number of CPUs)")
	flags.Bool("dry-run", false, "Print the model to stdout without writing files")

	flags.StringP("grouping", "g", "", "Controller grouping strategy: ByTag, ByFirstPathSegment, ByPath")
	flags.Bool("contracts", true, "Build contract definitions")
	flags.Bool("controllers", true, "Build controller definitions")
	flags.Bool("validation", true, "Forward validation constraints")
	flags.Bool("docs", true, "Forward documentation strings")
	flags.Bool("records", true, "Use records hint for contracts")
	flags.Bool("async", true, "Use async controllers hint")
	flags.Bool("api-controller-attribute", true, "Add API controller attribute hint")
	flags.String("base-namespace", "", "Base namespace hint")
	flags.String("contracts-namespace", "", "Contracts namespace hint")
	flags.String("controllers-namespace", "", "Controllers namespace hint")
	flags.String("controller-base-class", "", "Controller base class hint")
}

// Load layers defaults, the config file and flags. Positional args replace
// the configured spec list.
func Load(cmd *cobra.Command, args []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(args) > 0 {
		flagsMap["specs"] = args
	}
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	flags := cmd.Flags()

	getString := func(name string) string {
		if v, err := flags.GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	flagChanged := func(name string) bool {
		return flags.Changed(name)
	}

	getBool := func(name string) bool {
		v, _ := flags.GetBool(name)
		return v
	}

	if v := getString("output-dir"); v != "" {
		m["output.dir"] = v
	}
	if v := getString("format"); v != "" {
		m["output.format"] = v
	}
	if v := getString("plugin"); v != "" {
		m["output.plugin"] = v
	}
	if flagChanged("workers") {
		v, _ := flags.GetInt("workers")
		m["workers"] = v
	}
	if flagChanged("dry-run") {
		m["output.dry-run"] = getBool("dry-run")
	}

	if v := getString("grouping"); v != "" {
		m["generator.controller-grouping-strategy"] = v
	}
	if v := getString("base-namespace"); v != "" {
		m["generator.base-namespace"] = v
	}
	if v := getString("contracts-namespace"); v != "" {
		m["generator.contracts-namespace"] = v
	}
	if v := getString("controllers-namespace"); v != "" {
		m["generator.controllers-namespace"] = v
	}
	if v := getString("controller-base-class"); v != "" {
		m["generator.controller-base-class"] = v
	}

	boolFlags := map[string]string{
		"contracts":                "generator.generate-contracts",
		"controllers":              "generator.generate-controllers",
		"validation":               "generator.generate-validation-attributes",
		"docs":                     "generator.generate-xml-documentation",
		"records":                  "generator.use-records",
		"async":                    "generator.use-async-controllers",
		"api-controller-attribute": "generator.add-api-controller-attribute",
	}
	for flag, key := range boolFlags {
		if flagChanged(flag) {
			m[key] = getBool(flag)
		}
	}

	return m
}

func (c *Config) Validate() error {
	if len(c.Specs) == 0 {
		return fmt.Errorf("at least one spec file is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d (must be >= 0)", c.Workers)
	}

	validFormats := map[string]bool{"": true, "yaml": true, "json": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s (valid: yaml, json)", c.Output.Format)
	}

	if strings.ContainsAny(c.Output.Plugin, `/\ `) {
		return fmt.Errorf("invalid plugin name: %q", c.Output.Plugin)
	}

	if _, err := grouping.ParseStrategy(c.Generator.ControllerGroupingStrategy); err != nil {
		return fmt.Errorf("invalid controller grouping strategy: %s (valid: ByTag, ByFirstPathSegment, ByPath)", c.Generator.ControllerGroupingStrategy)
	}

	return nil
}
