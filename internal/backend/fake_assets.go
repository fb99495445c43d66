package backend

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// placeholderUnit scales the ratio of a placeholder image into pixels
const placeholderUnit = 20

// NewFakeAssets serves placeholder images for the paths the fake backend
// hands out, so demo campaigns render without a generation service.
// The image has the aspect ratio named by the file and a color derived
// from the product directory.
func NewFakeAssets() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dir, file := path.Split(path.Clean(r.URL.Path))
		width, height, ok := placeholderSize(strings.TrimSuffix(file, ".png"))
		if !ok || !strings.HasSuffix(file, ".png") {
			http.NotFound(w, r)
			return
		}

		img := image.NewRGBA(image.Rect(0, 0, width, height))
		fill := placeholderColor(path.Base(dir))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, fill)
			}
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if r.Method != http.MethodHead {
			_, _ = w.Write(buf.Bytes())
		}
	})
}

// placeholderSize maps a "16x9" style file name to pixel dimensions
func placeholderSize(name string) (int, int, bool) {
	for _, ratio := range models.AspectRatios {
		if strings.ReplaceAll(string(ratio), ":", "x") != name {
			continue
		}
		w, h, _ := strings.Cut(string(ratio), ":")
		wi, _ := strconv.Atoi(w)
		hi, _ := strconv.Atoi(h)
		return wi * placeholderUnit, hi * placeholderUnit, true
	}
	return 0, 0, false
}

func placeholderColor(product string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(product))
	sum := h.Sum32()
	// keep the channels in a muted mid range
	return color.RGBA{
		R: 96 + uint8(sum%128),
		G: 96 + uint8((sum>>8)%128),
		B: 96 + uint8((sum>>16)%128),
		A: 255,
	}
}
