package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

const catalog = `
classes:
  - name: ./base
    abstract: true
    test:
      suiteName: S1
      testName: T1
  - name: ./pkg/a
    extends: ./base
  - name: ./pkg/b
    extends: ./base
  - name: ./pkg/c
  - name: ./pkg/d
    extends: ./base
    test:
      suiteName: S2
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRegistry(t *testing.T) {
	configPath := writeCatalog(t, catalog)

	t.Run("source loading", func(t *testing.T) {
		tests := []struct {
			name    string
			cfg     Config
			wantErr bool
		}{
			{
				name:    "valid catalog",
				cfg:     Config{CatalogFile: configPath},
				wantErr: false,
			},
			{
				name:    "invalid config path",
				cfg:     Config{CatalogFile: "nonexistent.yaml"},
				wantErr: true,
			},
			{
				name:    "no catalog",
				cfg:     Config{},
				wantErr: true,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.cfg.Log = log.NewLogger(log.DiscardHandler())
				r, err := NewRegistry(tt.cfg)
				if (err != nil) != tt.wantErr {
					t.Errorf("NewRegistry() error = %v, wantErr %v", err, tt.wantErr)
					return
				}
				if err == nil {
					require.NotNil(t, r.GetConfig(), "config should be loaded")
				}
			})
		}
	})
}

func TestClassHierarchy(t *testing.T) {
	r, err := NewRegistry(Config{CatalogFile: writeCatalog(t, catalog), Log: log.NewLogger(log.DiscardHandler())})
	require.NoError(t, err)

	classes := r.GetClasses()
	var names []string
	for _, c := range classes {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"./pkg/a", "./pkg/b", "./pkg/c", "./pkg/d"}, names)

	base := r.GetClass("./base")
	require.NotNil(t, base)
	assert.True(t, base.Abstract)
	assert.Same(t, base, r.GetClass("./pkg/a").Parent)
	assert.Same(t, base, r.GetClass("./pkg/b").Parent)
	assert.Nil(t, r.GetClass("./pkg/c").Parent)
	assert.Nil(t, r.GetClass("./missing"))
	assert.True(t, r.MetadataAvailable())

	resolver := plan.NewResolver(r.MetadataAvailable)
	suite, test := resolver.Resolve(r.GetClass("./pkg/a"))
	assert.Equal(t, "S1", suite)
	assert.Equal(t, "T1", test)

	suite, test = resolver.Resolve(r.GetClass("./pkg/c"))
	assert.Equal(t, types.DefaultSuiteName, suite)
	assert.Equal(t, types.DefaultTestName, test)

	// nearest metadata wins and is not merged with the ancestor's
	suite, test = resolver.Resolve(r.GetClass("./pkg/d"))
	assert.Equal(t, "S2", suite)
	assert.Equal(t, types.DefaultTestName, test)
}

func TestMetadataDisabled(t *testing.T) {
	r, err := NewRegistry(Config{
		CatalogFile: writeCatalog(t, "metadata: disabled\n"+strings.TrimPrefix(catalog, "\n")),
		Log:         log.NewLogger(log.DiscardHandler()),
	})
	require.NoError(t, err)
	assert.False(t, r.MetadataAvailable())

	suite, test := plan.NewResolver(r.MetadataAvailable).Resolve(r.GetClass("./pkg/a"))
	assert.Equal(t, types.DefaultSuiteName, suite)
	assert.Equal(t, types.DefaultTestName, test)
}

func TestCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "circular inheritance",
			content: `
classes:
  - name: a
    extends: b
  - name: b
    extends: a
`,
			wantErr: "circular inheritance detected",
		},
		{
			name: "self inheritance",
			content: `
classes:
  - name: a
    extends: a
`,
			wantErr: "circular inheritance detected at class a",
		},
		{
			name: "missing parent",
			content: `
classes:
  - name: a
    extends: ghost
`,
			wantErr: "class a extends non-existent class ghost",
		},
		{
			name: "duplicate class",
			content: `
classes:
  - name: a
  - name: a
`,
			wantErr: "duplicate class a",
		},
		{
			name: "unnamed class",
			content: `
classes:
  - extends: a
`,
			wantErr: "class entry without a name",
		},
		{
			name:    "invalid metadata setting",
			content: "metadata: sometimes\nclasses: []\n",
			wantErr: `invalid metadata setting "sometimes"`,
		},
		{
			name:    "invalid yaml",
			content: "classes: [",
			wantErr: "parsing config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(Config{CatalogFile: writeCatalog(t, tt.content), Log: log.NewLogger(log.DiscardHandler())})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeCatalog(t, catalog))
	require.NoError(t, err)
	require.Len(t, cfg.Classes, 5)
	assert.Equal(t, "./base", cfg.Classes[0].Name)
	require.NotNil(t, cfg.Classes[0].Test)
	assert.Equal(t, "S1", cfg.Classes[0].Test.SuiteName)
	assert.Equal(t, "./base", cfg.Classes[1].Extends)
}

func TestRegistryDiscoverMode(t *testing.T) {
	tmpDir := t.TempDir()

	pkg1Dir := filepath.Join(tmpDir, "pkg1")
	pkg2Dir := filepath.Join(tmpDir, "subdir", "pkg2")
	require.NoError(t, os.MkdirAll(pkg1Dir, 0755))
	require.NoError(t, os.MkdirAll(pkg2Dir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(pkg1Dir, "pkg1_test.go"),
		[]byte("package pkg1\nimport \"testing\"\nfunc TestOne(t *testing.T) {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg2Dir, "pkg2_test.go"),
		[]byte("package pkg2\nimport \"testing\"\nfunc TestTwo(t *testing.T) {}\n"), 0644))

	registry, err := NewRegistry(Config{
		Log:          log.NewLogger(log.DiscardHandler()),
		DiscoverMode: true,
		TestDir:      tmpDir + "/...",
	})
	require.NoError(t, err)

	var names []string
	for _, c := range registry.GetClasses() {
		assert.Nil(t, c.Metadata)
		assert.Nil(t, c.Parent)
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"./pkg1", "./subdir/pkg2"}, names)
}

func TestRegistryDiscoverModeEmpty(t *testing.T) {
	_, err := NewRegistry(Config{
		Log:          log.NewLogger(log.DiscardHandler()),
		DiscoverMode: true,
		TestDir:      t.TempDir(),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no test packages found")
}

func TestRegistryDiscoverModeInvalidDir(t *testing.T) {
	_, err := NewRegistry(Config{
		Log:          log.NewLogger(log.DiscardHandler()),
		DiscoverMode: true,
		TestDir:      filepath.Join(t.TempDir(), "nonexistent"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestRegistryDiscoverMode_NoParentComponents(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "root", "sub")
	pkg := filepath.Join(subDir, "pkg1")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "pkg1_test.go"),
		[]byte("package pkg1\nimport \"testing\"\nfunc TestOne(t *testing.T){}\n"), 0o644))

	reg, err := NewRegistry(Config{
		Log:          log.NewLogger(log.DiscardHandler()),
		DiscoverMode: true,
		TestDir:      filepath.Join(subDir, "..", "sub") + "/...",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.GetClasses())
	for _, c := range reg.GetClasses() {
		assert.False(t, strings.HasPrefix(c.Name, "../"), "class path should not start with ../: %s", c.Name)
	}
}
