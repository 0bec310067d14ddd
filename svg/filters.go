package svg

import (
	_ "embed"
	"slices"
	"strings"
	"sync"

	"github.com/magiconair/properties"

	"github.com/gogpu/halo"
)

const filterPrefix = "filter."

//go:embed filters.properties
var filterResource []byte

var (
	filtersOnce sync.Once
	filterMap   map[string]string // lowercased name without prefix -> fragment
	filterNames []string
)

func loadFilters() {
	filterMap = make(map[string]string)
	p, err := properties.Load(filterResource, properties.UTF8)
	if err != nil {
		halo.Logger().Error("svg: filter catalog unreadable", "err", err)
		return
	}
	p.DisableExpansion = true
	for _, k := range p.Keys() {
		if !strings.HasPrefix(k, filterPrefix) {
			continue
		}
		name := strings.TrimPrefix(k, filterPrefix)
		filterMap[strings.ToLower(name)] = p.GetString(k, "")
		filterNames = append(filterNames, name)
	}
	slices.Sort(filterNames)
}

// Filters lists the names of the available filters.
func Filters() []string {
	filtersOnce.Do(loadFilters)
	return slices.Clone(filterNames)
}

// LookupFilter returns the filter fragment for name. The lookup ignores case
// and accepts the name with or without the "filter." prefix.
func LookupFilter(name string) (string, bool) {
	filtersOnce.Do(loadFilters)
	n := strings.ToLower(strings.TrimSpace(name))
	frag, ok := filterMap[strings.TrimPrefix(n, filterPrefix)]
	return frag, ok
}
