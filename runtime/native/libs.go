package native

import (
	"sort"
	"strings"

	"github.com/npillmayer/schuko/gconf"
)

// Aliases maps stable library aliases to candidate shared-object names.
// Candidates are tried in order; the first one which can be opened and
// exports the requested symbol wins.
//
// A candidate list may be replaced through the configuration key
// "native.lib.<alias>", holding a colon-separated list of names.
var Aliases = map[string][]string{
	"c":       {"libc.so.6", "libc.so", "libc.dylib", "/usr/lib/libSystem.B.dylib"},
	"m":       {"libm.so.6", "libm.so", "libm.dylib", "/usr/lib/libSystem.B.dylib"},
	"dl":      {"libdl.so.2", "libdl.so", "libdl.dylib", "/usr/lib/libSystem.B.dylib"},
	"pthread": {"libpthread.so.0", "libpthread.so", "libpthread.dylib", "/usr/lib/libSystem.B.dylib"},
}

// Candidates returns the shared-object names for a library alias. Names not
// known as an alias are taken to be a library name themselves; the empty
// alias has no candidates (process symbols only).
func Candidates(alias string) []string {
	if alias == "" {
		return nil
	}
	if conf := gconf.GetString("native.lib." + alias); conf != "" {
		return splitList(conf)
	}
	if names, ok := Aliases[alias]; ok {
		return names
	}
	if strings.HasPrefix(alias, "lib") {
		return []string{alias}
	}
	return []string{"lib" + alias + ".so", "lib" + alias + ".dylib", alias}
}

// KnownAliases returns the names of all built-in aliases, sorted.
func KnownAliases() []string {
	names := make([]string, 0, len(Aliases))
	for name := range Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func splitList(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ":") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func faultTrapEnabled() bool {
	return !gconf.GetBool("native.no-fault-trap")
}
