package logging2

import (
	"embed"
	"io/fs"

	"github.com/Zoorn/logging2/conf"
)

//go:embed configs
var embeddedConfigs embed.FS

// EmbeddedConfigs exposes the documents shipped with the package
// (logging_console, logging_file, logging_rotating, logging_sqlite) as a
// configuration source. It backs DefaultOptions and serves as the fallback
// behind caller-provided sources.
func EmbeddedConfigs() conf.Source {
	sub, err := fs.Sub(embeddedConfigs, "configs")
	if err != nil {
		panic(err)
	}
	return conf.FS(sub, "embedded configs")
}
