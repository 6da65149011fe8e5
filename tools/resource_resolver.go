package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/golang/glog"
)

const (
	packageScheme = "package://"
	fileScheme    = "file://"
)

var (
	ErrPackageNotFound = errors.New("package not found in ROS_PACKAGE_PATH")
	ErrRosDisabled     = errors.New("package:// paths need ROS resolution enabled")
)

type ResourceResolver interface {
	// Resolve turns a mesh filename of the document into a local file path.
	Resolve(uri string) (string, error)
}

type StandardResourceResolver struct {
	baseDir      string
	useRos       bool
	packageRoots []string

	mu       sync.Mutex
	packages map[string]string
}

// NewStandardResourceResolver resolves relative paths against the directory of
// urdfPath and, when useRos is set, package:// paths through ROS_PACKAGE_PATH.
func NewStandardResourceResolver(urdfPath string, useRos bool) ResourceResolver {
	var roots []string
	for _, root := range filepath.SplitList(os.Getenv("ROS_PACKAGE_PATH")) {
		if root != "" {
			roots = append(roots, root)
		}
	}
	return NewResourceResolverWithRoots(filepath.Dir(urdfPath), useRos, roots)
}

func NewResourceResolverWithRoots(baseDir string, useRos bool, packageRoots []string) *StandardResourceResolver {
	return &StandardResourceResolver{
		baseDir:      baseDir,
		useRos:       useRos,
		packageRoots: packageRoots,
		packages:     map[string]string{},
	}
}

func (r *StandardResourceResolver) Resolve(uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, packageScheme):
		if !r.useRos {
			return "", fmt.Errorf("%w: %s", ErrRosDisabled, uri)
		}
		name, rel, _ := strings.Cut(strings.TrimPrefix(uri, packageScheme), "/")
		dir, err := r.findPackage(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", uri, err)
		}
		return filepath.Join(dir, filepath.FromSlash(rel)), nil
	case strings.HasPrefix(uri, fileScheme):
		return filepath.FromSlash(strings.TrimPrefix(uri, fileScheme)), nil
	case filepath.IsAbs(uri):
		return uri, nil
	default:
		return filepath.Join(r.baseDir, filepath.FromSlash(uri)), nil
	}
}

func (r *StandardResourceResolver) findPackage(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dir, ok := r.packages[name]; ok {
		return dir, nil
	}
	for _, root := range r.packageRoots {
		dir, err := searchPackage(root, name)
		if err != nil {
			glog.Warningf("cannot search package root %s: %v", root, err)
			continue
		}
		if dir != "" {
			glog.V(1).Infof("package %s found in %s", name, dir)
			r.packages[name] = dir
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrPackageNotFound, name)
}

// searchPackage walks root for a directory called name or holding a package.xml
// that declares name. Packages are not searched for nested packages.
func searchPackage(root string, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		manifest, hasManifest := readPackageName(filepath.Join(path, "package.xml"))
		if manifest == name || (d.Name() == name && (!hasManifest || manifest == "")) {
			found = path
			return filepath.SkipAll
		}
		if hasManifest {
			return filepath.SkipDir
		}
		return nil
	})
	return found, err
}

// readPackageName returns the <name> of a package.xml manifest. The boolean is
// false when path does not exist.
func readPackageName(path string) (string, bool) {
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	manifest := etree.NewDocument()
	if err := manifest.ReadFromFile(path); err != nil {
		glog.Warningf("cannot parse %s: %v", path, err)
		return "", true
	}
	root := manifest.Root()
	if root == nil || root.Tag != "package" {
		return "", true
	}
	name := root.SelectElement("name")
	if name == nil {
		return "", true
	}
	return strings.TrimSpace(name.Text()), true
}
