package main

import (
	flag "github.com/spf13/pflag"

	mdocx "github.com/sfu-bigdata/go-mdocx"
	"github.com/sfu-bigdata/go-mdocx/internal/config"
	"github.com/sfu-bigdata/go-mdocx/internal/dateutil"
	"github.com/sfu-bigdata/go-mdocx/internal/mathimg"
	"github.com/sfu-bigdata/go-mdocx/internal/pipeline"
	"github.com/sfu-bigdata/go-mdocx/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML: the config file,
// then environment overrides, then library defaults for anything still unset.
func runConfigCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var configName string
	fs.StringVarP(&configName, "config", "c", "", "config file name or path")
	fs.Usage = func() { printConfigUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := loadConfig(configName, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	fillDefaults(cfg)
	return yamlutil.Encode(env.Stdout, cfg)
}

// fillDefaults sets every empty field to the value the library would use.
func fillDefaults(cfg *config.Config) {
	setString(&cfg.Document.DateFormat, dateutil.DefaultFormat)
	setString(&cfg.Page.Size, mdocx.PageSizeLetter)
	setString(&cfg.Page.Orientation, mdocx.OrientationPortrait)
	if cfg.Page.Margin == 0 {
		cfg.Page.Margin = mdocx.DefaultMargin
	}
	if cfg.Images.WidthCm == 0 {
		cfg.Images.WidthCm = mdocx.DefaultImageWidthCm
	}

	setString(&cfg.Styles.Set, mdocx.DefaultStyleSet)
	setString(&cfg.Styles.Code, mdocx.DefaultCodeStyle)
	setString(&cfg.Styles.BulletList, mdocx.DefaultBulletListStyle)
	setString(&cfg.Styles.NumberedList, mdocx.DefaultNumberedListStyle)
	setString(&cfg.Styles.Table, mdocx.DefaultTableStyle)

	setString(&cfg.Math.Engine, mathimg.EngineLaTeX)
	setString(&cfg.Math.TempDir, mdocx.DefaultTempDir)
	if cfg.Math.DPI == 0 {
		cfg.Math.DPI = mathimg.DefaultDPI
	}
	setString(&cfg.Math.LaTeX, mathimg.DefaultLaTeXBin)
	setString(&cfg.Math.DVIPNG, mathimg.DefaultDVIPNGBin)
	setString(&cfg.Math.Timeout, mathimg.DefaultTimeout.String())
	setString(&cfg.Math.ScriptURL, mathimg.DefaultMathJaxURL)

	setString(&cfg.Code.Theme, pipeline.DefaultTheme)
}

func setString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}
