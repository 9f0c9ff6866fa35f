package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []ProductInput `yaml:"products"`
}

// LoadSeed reads a YAML fixture of the form
//
//	products:
//	  - name: Arduino Uno
//	    category: Boards
//	    price: 650
//	    stock: 12
func LoadSeed(r io.Reader) ([]ProductInput, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return f.Products, nil
}

// Seed saves every input whose name is not in the catalog yet and returns how
// many were created.
func Seed(ctx context.Context, svc *Service, in []ProductInput) (int, error) {
	existing, err := svc.Store.List(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[strings.ToLower(p.Name)] = true
	}

	n := 0
	for i, pi := range in {
		key := strings.ToLower(strings.TrimSpace(pi.Name))
		if have[key] {
			continue
		}
		if _, err := svc.Save(ctx, "", pi, nil); err != nil {
			return n, fmt.Errorf("seed product %d (%q): %w", i, pi.Name, err)
		}
		have[key] = true
		n++
	}
	return n, nil
}
