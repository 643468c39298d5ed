package vision

import (
	"image"
	"image/color"

	"desktop-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
)

// Preprocess prepares an image for text recognition. Unknown methods return
// the image unchanged.
func Preprocess(img image.Image, method entity.PreprocessMethod) image.Image {
	switch method {
	case entity.PreprocessContrast:
		return imaging.AdjustContrast(imaging.Grayscale(img), 40)
	case entity.PreprocessDenoise:
		return imaging.Blur(img, 1.0)
	case entity.PreprocessSharpen:
		return imaging.Sharpen(img, 1.5)
	case entity.PreprocessBinarize:
		return Binarize(img, 2)
	default:
		return img
	}
}

// Binarize applies a Gaussian-weighted adaptive threshold: a pixel is white
// when it is brighter than its neighbourhood mean minus offset.
func Binarize(img image.Image, offset float64) *image.Gray {
	gray := imaging.Blur(imaging.Grayscale(img), 0.5)
	local := imaging.Blur(gray, 2.0)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*gray.Stride + x*4
			if float64(gray.Pix[i]) > float64(local.Pix[i])-offset {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// Crop cuts r out of img, clipped to its bounds, with the result at origin.
func Crop(img image.Image, r entity.Rect) image.Image {
	b := img.Bounds()
	return imaging.Crop(img, r.Image().Add(b.Min))
}

// Downscale shrinks img so its width is at most maxWidth, keeping the aspect ratio.
func Downscale(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}
