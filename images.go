package homepage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 80
	imagesDir     = "images"
)

// scaleImage decodes src and, when it is wider than width, resizes it to
// width keeping the aspect ratio. JPEG sources are re-encoded as JPEG and
// everything else as PNG. The returned bool is false when no resize was
// needed.
func scaleImage(src io.Reader, width int) ([]byte, string, bool, error) {
	img, format, err := image.Decode(src)
	if err != nil {
		return nil, "", false, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if width <= 0 || w <= width {
		return nil, "", false, nil
	}

	newH := h * width / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", false, fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", true, nil
	}
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", false, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), "image/png", true, nil
}

// handleImage serves a file under images/. A w query parameter asks for a
// copy downscaled to that width, capped at maxImageWidth.
func (a *App) handleImage(c echo.Context) error {
	name := path.Join(imagesDir, c.Param("*"))
	if !fs.ValidPath(name) {
		return echo.ErrNotFound
	}
	data, err := fs.ReadFile(a.contentFS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.ErrNotFound
		}
		return err
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	width, _ := strconv.Atoi(c.QueryParam("w"))
	if width > maxImageWidth {
		width = maxImageWidth
	}
	if width > 0 && contentType != "image/svg+xml" {
		scaled, scaledType, ok, err := scaleImage(bytes.NewReader(data), width)
		if err != nil {
			return c.String(http.StatusUnprocessableEntity, "Invalid image: "+err.Error())
		}
		if ok {
			return c.Blob(http.StatusOK, scaledType, scaled)
		}
	}
	return c.Blob(http.StatusOK, contentType, data)
}
