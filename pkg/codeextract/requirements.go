package codeextract

import (
	"regexp"
	"sort"
	"strings"
)

// pyStdlib is the set of Python standard-library top-level module names
// excluded from generated requirements.
var pyStdlib = map[string]bool{
	"os": true, "sys": true, "re": true, "json": true, "math": true, "time": true,
	"datetime": true, "collections": true, "itertools": true, "functools": true,
	"typing": true, "pathlib": true, "subprocess": true, "logging": true,
	"random": true, "string": true, "io": true, "abc": true, "enum": true,
	"dataclasses": true, "unittest": true, "argparse": true, "copy": true,
	"threading": true, "multiprocessing": true, "asyncio": true, "socket": true,
	"struct": true, "hashlib": true, "base64": true, "uuid": true, "csv": true,
	"sqlite3": true, "shutil": true, "glob": true, "tempfile": true, "traceback": true,
	"warnings": true, "contextlib": true, "queue": true, "heapq": true, "bisect": true,
	"pickle": true, "zipfile": true, "xml": true, "html": true, "http": true,
	"urllib": true, "email": true, "configparser": true, "decimal": true, "fractions": true,
}

// pyPackageAlias maps a Python import's top-level module name to the PyPI
// distribution name, for the handful of well-known cases where they differ.
var pyPackageAlias = map[string]string{
	"np":       "numpy",
	"numpy":    "numpy",
	"pd":       "pandas",
	"pandas":   "pandas",
	"sklearn":  "scikit-learn",
	"cv2":      "opencv-python",
	"PIL":      "Pillow",
	"yaml":     "PyYAML",
	"bs4":      "beautifulsoup4",
	"dotenv":   "python-dotenv",
	"jwt":      "PyJWT",
	"requests": "requests",
	"flask":    "Flask",
	"Flask":    "Flask",
	"django":   "Django",
	"pytest":   "pytest",
	"torch":    "torch",
	"tf":       "tensorflow",
	"tensorflow": "tensorflow",
}

var (
	importRe     = regexp.MustCompile(`(?m)^\s*import\s+([A-Za-z_][A-Za-z0-9_]*)`)
	fromImportRe = regexp.MustCompile(`(?m)^\s*from\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// GenerateRequirements scans python source for top-level imports and
// returns a sorted, deduplicated list of PyPI package names, stdlib and
// relative/local imports excluded. Returns nil if nothing third-party is
// imported.
func GenerateRequirements(pythonSources []string) []string {
	seen := make(map[string]bool)
	for _, src := range pythonSources {
		for _, m := range importRe.FindAllStringSubmatch(src, -1) {
			addRequirement(seen, m[1])
		}
		for _, m := range fromImportRe.FindAllStringSubmatch(src, -1) {
			addRequirement(seen, m[1])
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for pkg := range seen {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

func addRequirement(seen map[string]bool, module string) {
	if pyStdlib[module] {
		return
	}
	name := module
	if alias, ok := pyPackageAlias[module]; ok {
		name = alias
	}
	seen[name] = true
}

func requirementsText(pkgs []string) string {
	return strings.Join(pkgs, "\n") + "\n"
}
