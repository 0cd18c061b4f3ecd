package xgbsys

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/samber/lo"
)

// BuildArtifacts are the library locations found on disk after a build.
type BuildArtifacts struct {
	InstallDir string `json:"install_dir" yaml:"install_dir"`
	StagedRoot string `json:"staged_root" yaml:"staged_root"`

	// SourceSearchPaths are the candidate directories under the staged tree that exist.
	SourceSearchPaths []string `json:"source_search_paths" yaml:"source_search_paths"`
	// InstallSearchPaths are the candidate directories under the install prefix that exist.
	InstallSearchPaths []string `json:"install_search_paths" yaml:"install_search_paths"`

	// StaticLibs maps an archive name such as "xgboost" to its path.
	StaticLibs map[string]string `json:"static_libs" yaml:"static_libs"`
}

// SourceSearchCandidates returns the directories under the staged tree that
// may hold archives. The layout differs between cmake and XGBoost versions,
// so all of them are probed.
func (l Layout) SourceSearchCandidates() []string {
	return []string{
		filepath.Join(l.StagedRoot, "lib"),
		filepath.Join(l.StagedRoot, "lib64"),
		filepath.Join(l.StagedRoot, "rabit", "lib"),
		filepath.Join(l.StagedRoot, "dmlc-core"),
	}
}

// InstallSearchCandidates returns the install prefix and its library directories.
func (l Layout) InstallSearchCandidates() []string {
	return []string{
		l.InstallDir,
		filepath.Join(l.InstallDir, "lib"),
		filepath.Join(l.InstallDir, "lib64"),
	}
}

// Discover finds which candidate search paths exist and where each internal
// archive was installed. The main library archive must be present.
func Discover(layout Layout) (*BuildArtifacts, error) {
	a := &BuildArtifacts{
		InstallDir:         layout.InstallDir,
		StagedRoot:         layout.StagedRoot,
		SourceSearchPaths:  lo.Filter(layout.SourceSearchCandidates(), func(p string, _ int) bool { return dirExists(p) }),
		InstallSearchPaths: lo.Filter(layout.InstallSearchCandidates(), func(p string, _ int) bool { return dirExists(p) }),
		StaticLibs:         map[string]string{},
	}

	dirs := append(slices.Clone(a.InstallSearchPaths), a.SourceSearchPaths...)
	for _, name := range LinkOrder {
		if path, ok := findArchive(dirs, name); ok {
			a.StaticLibs[name] = path
		}
	}

	if _, ok := a.StaticLibs[LibraryName]; !ok {
		return a, &StageError{
			Stage: StageDiscovery,
			Path:  layout.InstallDir,
			Err:   fmt.Errorf("no %s archive under %v", archiveFileName(LibraryName, false), dirs),
		}
	}
	return a, nil
}

// Missing returns the internal archives that were not found.
func (a *BuildArtifacts) Missing() []string {
	return lo.Filter(LinkOrder, func(name string, _ int) bool {
		_, ok := a.StaticLibs[name]
		return !ok
	})
}

func findArchive(dirs []string, name string) (string, bool) {
	for _, dir := range dirs {
		for _, file := range []string{archiveFileName(name, false), archiveFileName(name, true)} {
			path := filepath.Join(dir, file)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, true
			}
		}
	}
	return "", false
}

func archiveFileName(name string, msvc bool) string {
	if msvc {
		return name + ".lib"
	}
	return "lib" + name + ".a"
}

// findStaticArchives locates the archives cmake installed under installDir.
func findStaticArchives(installDir string) ([]string, error) {
	var archives []string

	for _, dir := range []string{"lib", "lib64"} {
		for _, pattern := range []string{"*.a", "*.lib"} {
			matches, err := filepath.Glob(filepath.Join(installDir, dir, pattern))
			if err != nil {
				return nil, fmt.Errorf("failed to glob pattern %s in %s: %w", pattern, dir, err)
			}
			archives = append(archives, matches...)
		}
	}

	return archives, nil
}
