package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-testbridge/testlist"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Registry holds the test classes known to a run and their ancestor chains
type Registry struct {
	config          Config
	classes         []*types.ClassDescriptor
	byName          map[string]*types.ClassDescriptor
	metadataEnabled bool
	mu              sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log         log.Logger
	CatalogFile string
	// DiscoverMode lists every test package under TestDir instead of reading a catalog
	DiscoverMode bool
	TestDir      string
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.CatalogFile == "" && !cfg.DiscoverMode {
		return nil, fmt.Errorf("class catalog file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{
		config:          cfg,
		byName:          make(map[string]*types.ClassDescriptor),
		metadataEnabled: true,
	}

	var err error
	if cfg.DiscoverMode {
		err = r.discoverClasses(cfg.TestDir)
	} else {
		err = r.loadCatalog(cfg.CatalogFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "len(classes)", len(r.classes), "metadata", r.metadataEnabled)

	return r, nil
}

func (r *Registry) loadCatalog(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch strings.TrimSpace(catalog.Metadata) {
	case "", "enabled":
	case types.MetadataDisabled:
		r.metadataEnabled = false
	default:
		return fmt.Errorf("invalid metadata setting %q", catalog.Metadata)
	}

	entries := make(map[string]types.ClassConfig, len(catalog.Classes))
	for _, c := range catalog.Classes {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("class entry without a name")
		}
		if _, dup := entries[c.Name]; dup {
			return fmt.Errorf("duplicate class %s", c.Name)
		}
		entries[c.Name] = c
	}

	for _, c := range catalog.Classes {
		if err := checkCircularInheritance(c.Name, entries, make(map[string]bool)); err != nil {
			return fmt.Errorf("invalid class inheritance: %w", err)
		}
	}

	for _, c := range catalog.Classes {
		desc := r.descriptor(c.Name, entries)
		if !c.Abstract {
			r.classes = append(r.classes, desc)
		}
	}
	return nil
}

// descriptor builds the descriptor for name and its ancestors, sharing parents between classes
func (r *Registry) descriptor(name string, entries map[string]types.ClassConfig) *types.ClassDescriptor {
	if d, ok := r.byName[name]; ok {
		return d
	}
	entry := entries[name]
	d := &types.ClassDescriptor{
		Name:     entry.Name,
		Metadata: entry.Test.ToMetadata(),
		Abstract: entry.Abstract,
	}
	if entry.Extends != "" {
		d.Parent = r.descriptor(entry.Extends, entries)
	}
	r.byName[name] = d
	return d
}

// checkCircularInheritance detects circular and dangling parent links
func checkCircularInheritance(currentID string, entries map[string]types.ClassConfig, visited map[string]bool) error {
	if visited[currentID] {
		return fmt.Errorf("circular inheritance detected at class %s", currentID)
	}
	visited[currentID] = true

	parent := entries[currentID].Extends
	if parent == "" {
		return nil
	}
	if _, exists := entries[parent]; !exists {
		return fmt.Errorf("class %s extends non-existent class %s", currentID, parent)
	}
	return checkCircularInheritance(parent, entries, visited)
}

func (r *Registry) discoverClasses(testDir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if testDir == "" {
		testDir = "."
	}
	root := filepath.Clean(strings.TrimSuffix(testDir, "/..."))
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("test directory %s does not exist: %w", root, err)
	}

	pkgs, err := testlist.FindTestPackages(root, root)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no test packages found in %s", root)
	}
	for _, pkg := range pkgs {
		d := &types.ClassDescriptor{Name: pkg}
		r.classes = append(r.classes, d)
		r.byName[pkg] = d
	}
	return nil
}

// GetClasses returns the runnable (non-abstract) classes in catalog order
func (r *Registry) GetClasses() []*types.ClassDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes
}

// GetClass returns the descriptor for name, including abstract classes, or nil
func (r *Registry) GetClass(name string) *types.ClassDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// MetadataAvailable reports whether class metadata may be consulted.
// It is meant to be used as the resolver's capability probe.
func (r *Registry) MetadataAvailable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadataEnabled
}

// GetConfig returns the registry configuration
func (r *Registry) GetConfig() Config {
	return r.config
}

// loadConfig loads a class catalog from a file
func loadConfig(path string) (*types.CatalogConfig, error) {
	log.Debug("Reading class catalog file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg types.CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
