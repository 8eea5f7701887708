package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/CodingCat/tree-lite/model"
	"github.com/CodingCat/tree-lite/model/gormstore"
	_ "github.com/CodingCat/tree-lite/model/json"
	"github.com/CodingCat/tree-lite/model/loader"
	"github.com/CodingCat/tree-lite/model/redisstore"
)

type dumpCmdConfig struct {
	*rootCmdConfig
	// Format names the loader to parse file-based models with.
	Format string `yaml:"format"`
	// ModelIn is the model source: a file path, or a store URL of
	// the form redis://host:port/db#name, sqlite://path#name or
	// postgres://...#name.
	ModelIn string `yaml:"model_in"`
}

func dumpCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &dumpCmdConfig{rootCmdConfig: rootConfig}
	return &cobra.Command{
		Use:   "dump <config> [setting=value ...]",
		Short: "Print the trees of a committed model",
		Long:  `Load a committed model from a file or model store and print every tree breadth-first, one node per line, with per-tree leaf counts`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Parse(args)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.Logf("Loading model from %s...", config.ModelIn)
			m, err := config.loadModel(context.Background())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("Model loaded: %d trees over %d features", m.NumTrees(), m.NumFeatures())
			err = writeModelDump(os.Stdout, m)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
		},
	}
}

// Parse fills the config from the YAML file at args[0] and then
// applies any setting=value override arguments in order.
func (dcc *dumpCmdConfig) Parse(args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading config from %s: %v", args[0], err)
	}
	err = yaml.Unmarshal(data, dcc)
	if err != nil {
		return fmt.Errorf("parsing config from %s: %v", args[0], err)
	}
	for _, arg := range args[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid override %q, expected setting=value", arg)
		}
		switch name {
		case "format":
			dcc.Format = value
		case "model_in":
			dcc.ModelIn = value
		default:
			return fmt.Errorf("unknown setting %q", name)
		}
	}
	if dcc.ModelIn == "" {
		return fmt.Errorf("required model_in setting was not set")
	}
	return nil
}

func (dcc *dumpCmdConfig) Logf(format string, a ...interface{}) {
	logger(dcc.verbose).Logf(format, a...)
}

// loadModel resolves the configured model source: store URLs go to
// the matching model store, anything else is opened as a file and
// parsed by the loader registered for the configured format.
func (dcc *dumpCmdConfig) loadModel(ctx context.Context) (*model.Model, error) {
	if strings.Contains(dcc.ModelIn, "://") {
		return dcc.loadStoredModel(ctx)
	}
	if dcc.Format == "" {
		return nil, fmt.Errorf("required format setting was not set")
	}
	f, err := os.Open(dcc.ModelIn)
	if err != nil {
		return nil, fmt.Errorf("reading model from %s: %v", dcc.ModelIn, err)
	}
	defer f.Close()
	m, err := loader.Load(dcc.Format, f)
	if err != nil {
		return nil, fmt.Errorf("parsing model from %s: %v", dcc.ModelIn, err)
	}
	return m, nil
}

func (dcc *dumpCmdConfig) loadStoredModel(ctx context.Context) (*model.Model, error) {
	u, err := url.Parse(dcc.ModelIn)
	if err != nil {
		return nil, fmt.Errorf("parsing model store URL %s: %v", dcc.ModelIn, err)
	}
	name := u.Fragment
	if name == "" {
		return nil, fmt.Errorf("model store URL %s names no model: expected a #name fragment", dcc.ModelIn)
	}
	u.Fragment = ""
	switch u.Scheme {
	case "redis":
		opts, err := redis.ParseURL(u.String())
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL %s: %v", u, err)
		}
		rc := redis.NewClient(opts)
		defer rc.Close()
		return redisstore.New(rc, "").Load(ctx, name)
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(u.Host+u.Path), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("opening sqlite DB %s: %v", u, err)
		}
		store, err := gormstore.New(db)
		if err != nil {
			return nil, err
		}
		return store.Load(ctx, name)
	case "postgres", "postgresql":
		db, err := gorm.Open(postgres.Open(u.String()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("opening postgres DB %s: %v", u, err)
		}
		store, err := gormstore.New(db)
		if err != nil {
			return nil, err
		}
		return store.Load(ctx, name)
	}
	return nil, fmt.Errorf("unknown model store scheme %q in %s", u.Scheme, dcc.ModelIn)
}

/*
writeModelDump prints every tree of the model onto w, breadth-first
from the root, one node per line:

	Tree #0
	  0: split_index=3, threshold=0.5, op=<=, cleft=1, cright=2, cdefault=1
	  1: leaf_value=-0.2, parent=0
	  2: leaf_value=0.7, parent=0
	Tree #0 has 2 leaves total

Test nodes show their split feature, threshold, operator, child
indices and default-missing child, plus their parent unless they are
the root; leaf nodes show their value and parent.
*/
func writeModelDump(w io.Writer, m *model.Model) error {
	for i := 0; i < m.NumTrees(); i++ {
		t := m.At(i)
		var nleaf int
		_, err := fmt.Fprintf(w, "Tree #%d\n", i)
		if err != nil {
			return err
		}
		err = t.Walk(func(nid int, n model.Node) error {
			if n.IsLeaf() {
				nleaf++
				_, err := fmt.Fprintf(w, "  %d: leaf_value=%v, parent=%d\n", nid, n.LeafValue(), n.Parent())
				return err
			}
			_, err := fmt.Fprintf(w, "  %d: split_index=%d, threshold=%v, op=%s, cleft=%d, cright=%d, cdefault=%d",
				nid, n.SplitIndex(), n.Threshold(), n.Operator(), n.LeftChild(), n.RightChild(), n.DefaultChild())
			if err != nil {
				return err
			}
			if !n.IsRoot() {
				_, err = fmt.Fprintf(w, ", parent=%d\n", n.Parent())
			} else {
				_, err = fmt.Fprintln(w)
			}
			return err
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "Tree #%d has %d leaves total\n\n", i, nleaf)
		if err != nil {
			return err
		}
	}
	return nil
}
