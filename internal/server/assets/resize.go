package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
)

// errTooManyPixels is returned with the input untouched when the declared
// dimensions exceed the pixel limit. Such images are never decoded.
var errTooManyPixels = errors.New("image exceeds pixel limit")

// downscale shrinks an image whose longer side exceeds maxDimension so that
// it fits in a maxDimension square, keeping the aspect ratio and the format.
// Only JPEG and PNG are rescaled. Anything else is returned as is with
// resized == false. maxDimension 0 disables scaling, maxPixels 0 disables
// the pixel limit.
func downscale(data []byte, maxDimension uint, maxPixels uint64) (out []byte, resized bool, err error) {
	if maxDimension == 0 {
		return data, false, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, false, nil
	}
	if format != "jpeg" && format != "png" {
		return data, false, nil
	}
	if uint(cfg.Width) <= maxDimension && uint(cfg.Height) <= maxDimension {
		return data, false, nil
	}
	if maxPixels > 0 && uint64(cfg.Width)*uint64(cfg.Height) > maxPixels {
		return data, false, fmt.Errorf("%dx%d %s: %w", cfg.Width, cfg.Height, format, errTooManyPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", format, err)
	}
	thumb := resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, thumb)
	}
	if err != nil {
		return nil, false, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), true, nil
}
