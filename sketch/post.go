package sketch

import (
	"image"
	"image/color"
	"sync"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/gsketch/palette"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// postProcess returns img with the configured blur and contrast adjustments applied.
func postProcess(img *image.RGBA, s Settings) *image.RGBA {
	if s.Blur > 0 {
		img = blur.Gaussian(img, s.Blur)
	}
	if s.Contrast != 0 {
		img = adjust.Contrast(img, s.Contrast)
	}
	return img
}

var (
	goFontOnce sync.Once
	goFont     *truetype.Font
	goFontErr  error
)

func captionFont() (*truetype.Font, error) {
	goFontOnce.Do(func() {
		goFont, goFontErr = truetype.Parse(goregular.TTF)
	})
	return goFont, goFontErr
}

// stampCaption draws text over the bottom left corner of img in a color that contrasts
// with the background.
func stampCaption(img draw.Image, text string, bg color.NRGBA) error {
	f, err := captionFont()
	if err != nil {
		return err
	}
	h := img.Bounds().Dy()
	size := max(10, float64(h)/64)
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()
	fg := color.Color(color.Black)
	if c, _ := colorful.MakeColor(bg); palette.Luminance(c) < 0.5 {
		fg = color.White
	}
	margin := int(size)
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(img.Bounds().Min.X+margin, img.Bounds().Max.Y-margin),
	}
	d.DrawString(text)
	return nil
}
