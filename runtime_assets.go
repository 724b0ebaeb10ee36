package promptgen

import (
	"io/fs"

	vanilla "github.com/goliatone/go-promptgen/pkg/renderers/vanilla"
)

// RuntimeAssetsFS exposes the browser assets (stylesheet and list editing
// script) so Go applications can serve them without a build step.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(promptgen.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
