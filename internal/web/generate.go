package web

import (
	"io/fs"
	"os"
	"path/filepath"
)

// The browser slider is the compare state machine compiled to wasm. Both
// outputs land in static/ and are embedded with the rest of the assets.
//go:generate sh -c "GOOS=js GOARCH=wasm go build -o static/slider.wasm ../../cmd/slider"
//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" static/wasm_exec.js 2>/dev/null || cp \"$(go env GOROOT)/misc/wasm/wasm_exec.js\" static/wasm_exec.js"

var sliderFiles = []string{"slider.wasm", "wasm_exec.js"}

// SliderAssets reports whether the wasm slider can be served, either from
// dir or from the embedded copy. Pages only load the slider scripts when it can.
func SliderAssets(dir string) bool {
	for _, name := range sliderFiles {
		if !hasAsset(dir, name) {
			return false
		}
	}
	return true
}

func hasAsset(dir, name string) bool {
	if dir != "" {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	_, err := fs.Stat(staticFS, "static/"+name)
	return err == nil
}
