package track

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNoPath is returned when an SVG document contains no usable <path>.
var ErrNoPath = errors.New("no path element found in svg")

// ViewBox is the declared coordinate system of an SVG document.
type ViewBox struct {
	MinX, MinY, Width, Height float64
}

// LoadPathFromSVG opens an SVG file and returns the d attribute of its first path.
func LoadPathFromSVG(path string) (string, ViewBox, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", ViewBox{}, err
	}
	defer file.Close()

	return ExtractPathData(file)
}

// ExtractPathData decodes an SVG document and returns the d attribute of the
// first <path> element together with the root viewBox.
func ExtractPathData(r io.Reader) (string, ViewBox, error) {
	dec := xml.NewDecoder(r)
	var vb ViewBox

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", vb, fmt.Errorf("decode token: %w", err)
		}

		t, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch t.Name.Local {
		case "svg":
			for _, a := range t.Attr {
				if a.Name.Local == "viewBox" {
					vb = parseViewBox(a.Value)
				}
			}
		case "path":
			for _, a := range t.Attr {
				if a.Name.Local == "d" && strings.TrimSpace(a.Value) != "" {
					return a.Value, vb, nil
				}
			}
		}
	}
	return "", vb, ErrNoPath
}

// parseViewBox reads "minX minY width height"; malformed input yields a zero box.
func parseViewBox(s string) ViewBox {
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(parts) != 4 {
		return ViewBox{}
	}
	var nums [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return ViewBox{}
		}
		nums[i] = v
	}
	return ViewBox{MinX: nums[0], MinY: nums[1], Width: nums[2], Height: nums[3]}
}
