package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/sfu-bigdata/go-mdocx/internal/mathimg"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	LaTeX    latexInfo  `json:"latex"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// latexInfo holds latex and dvipng detection results.
type latexInfo struct {
	Found  bool   `json:"found"`
	LaTeX  string `json:"latex,omitempty"`
	DVIPNG string `json:"dvipng,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// doctorProbe abstracts the system lookups doctor performs.
type doctorProbe struct {
	getenv     func(string) string
	lookPath   func(string) (string, error)
	findChrome func() (string, bool)
	version    func(bin string) (string, error)
	fileExists func(string) bool
	tempDir    string
}

func defaultProbe(env *Environment) doctorProbe {
	return doctorProbe{
		getenv:     env.Getenv,
		lookPath:   exec.LookPath,
		findChrome: launcher.LookPath,
		version: func(bin string) (string, error) {
			out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- located browser binary
			return strings.TrimSpace(string(out)), err
		},
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		tempDir: os.TempDir(),
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "error: %v: unknown argument %q\n", ErrUsage, arg)
			return ExitUsage
		}
	}

	result := runDoctor(defaultProbe(env))

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(p doctorProbe) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  p.getenv("ROD_NO_SANDBOX"),
			BrowserBin: p.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkLaTeX(result, p)
	checkChrome(result, p)
	checkEngines(result)
	checkEnvironment(result, p)
	checkSystem(result, p)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkLaTeX detects the latex and dvipng binaries.
func checkLaTeX(result *doctorResult, p doctorProbe) {
	latexPath, latexErr := p.lookPath(mathimg.DefaultLaTeXBin)
	dvipngPath, dvipngErr := p.lookPath(mathimg.DefaultDVIPNGBin)
	result.LaTeX.LaTeX = latexPath
	result.LaTeX.DVIPNG = dvipngPath
	result.LaTeX.Found = latexErr == nil && dvipngErr == nil
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, p doctorProbe) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = p.findChrome()
		if !found {
			return
		}
	}

	if !p.fileExists(chromePath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	if v, err := p.version(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEngines requires at least one working math engine.
func checkEngines(result *doctorResult) {
	switch {
	case !result.LaTeX.Found && !result.Chrome.Found:
		result.Errors = append(result.Errors,
			"No math engine available. Install latex and dvipng, or Chrome (or set ROD_BROWSER_BIN)")
	case !result.LaTeX.Found:
		result.Warnings = append(result.Warnings,
			"latex/dvipng not found. Use --math-engine browser")
	case !result.Chrome.Found:
		result.Warnings = append(result.Warnings,
			"Chrome not found. The browser math engine is unavailable")
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, p doctorProbe) {
	result.Env.Container, result.Env.ContainerHint = isContainer(p)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if p.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(p doctorProbe) (bool, string) {
	if p.getenv("MDOCX_CONTAINER") == "1" {
		return true, "MDOCX_CONTAINER=1"
	}
	if p.fileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := p.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if p.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used by the math engines is writable.
func checkSystem(result *doctorResult, p doctorProbe) {
	result.System.TempDir = p.tempDir
	testFile := filepath.Join(p.tempDir, "mdocx-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", p.tempDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdocx doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LaTeX engine")
	if r.LaTeX.Found {
		fmt.Fprintf(w, "  [OK] latex: %s\n", r.LaTeX.LaTeX)
		fmt.Fprintf(w, "  [OK] dvipng: %s\n", r.LaTeX.DVIPNG)
	} else {
		fmt.Fprintln(w, "  [WARN] Not available")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser engine")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Chrome: %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not available")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  [OK] Temp directory: writable (%s)\n", r.System.TempDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Temp directory: not writable (%s)\n", r.System.TempDir)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
