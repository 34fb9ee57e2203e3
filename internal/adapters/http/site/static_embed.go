package site

import (
	"embed"
	"io/fs"
	"net/http"
)

// DatasetPath is the sample dataset inside Static.
const DatasetPath = "data/monuments.geojson"

//go:embed static/**
var staticFS embed.FS

// Static returns the embedded site rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}

// FS returns an http.FileSystem for the embedded site.
func FS() http.FileSystem {
	return http.FS(Static())
}
