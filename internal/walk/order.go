package walk

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gammazero/toposort"
)

// Order selects how directories are sequenced for removal.
type Order string

const (
	// OrderLength sorts by descending path length. A child path is always
	// a strict textual extension of its parent, so it sorts first.
	OrderLength Order = "length"
	// OrderTopological derives children-first order from explicit parent
	// edges instead of relying on path length.
	OrderTopological Order = "topological"
)

// ParseOrder converts a configuration string into an Order.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderLength:
		return OrderLength, nil
	case OrderTopological:
		return OrderTopological, nil
	default:
		return "", fmt.Errorf("unknown directory order %q", s)
	}
}

// Sort returns dirs arranged so every directory precedes its ancestors.
// The input slice is not modified.
func (o Order) Sort(dirs []string) []string {
	if o == OrderTopological {
		return SortTopological(dirs)
	}
	return SortByLength(dirs)
}

// SortByLength returns dirs ordered by descending path length.
// Equal lengths keep their traversal order.
func SortByLength(dirs []string) []string {
	out := make([]string, len(dirs))
	copy(out, dirs)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}

// SortTopological returns dirs ordered children first using parent edges.
// Directories whose parent is not in dirs and that have no listed
// children carry no edges and are appended in traversal order.
func SortTopological(dirs []string) []string {
	present := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		present[d] = true
	}

	// Edge{a, b}: a comes before b, so child -> parent
	edges := make([]toposort.Edge, 0, len(dirs))
	linked := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		parent := parentDir(d)
		if parent == "" || !present[parent] {
			continue
		}
		edges = append(edges, toposort.Edge{d, parent})
		linked[d] = true
		linked[parent] = true
	}

	out := make([]string, 0, len(dirs))
	if len(edges) > 0 {
		sorted, err := toposort.Toposort(edges)
		if err != nil {
			// unreachable for edges taken from a tree
			return SortByLength(dirs)
		}
		for _, n := range sorted {
			out = append(out, n.(string))
		}
	}
	for _, d := range dirs {
		if !linked[d] {
			out = append(out, d)
		}
	}
	return out
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, os.PathSeparator)
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
