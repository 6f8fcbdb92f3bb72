//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Service groups targets that talk to the analysis service.
type Service mg.Namespace

// Ping checks the configured analysis service. PIXEL8_UPLOAD_BASE_URL
// overrides the endpoint.
func (Service) Ping() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "ping")
}

// Upload sends the image named by IMAGE and prints the article as Markdown.
func (Service) Upload() error {
	mg.Deps(Build)
	image := os.Getenv("IMAGE")
	if image == "" {
		return mg.Fatal(2, "set IMAGE to the photo to upload")
	}
	return sh.RunV(binPath(), "upload", image, "--format", "markdown")
}

func binPath() string {
	return "./" + binDir + "/" + binName
}
