package gif

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/gorgonia/tictac/game"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `Episode 100000, X@8`
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

var globPalette = color.Palette{
	color.Gray{0},
	color.Gray{253},
}

// Encoder renders episodes as the frames of an animated GIF. It implements tictac.OutputEncoder.
type Encoder struct {
	H, W  int
	Every int // only every Every-th episode is rendered; 0 or 1 renders all of them
	font.Drawer

	out *gif.GIF
	io.Writer
	face font.Face

	maxH, maxW  int // maxHeight and maxWidth
	padH, padW  int // padding so everything don't start at the topleft
	fontsize    float64
	initialized bool
}

// NewGifEncoder with height and width
func NewGifEncoder(h, w int) *Encoder {
	return &Encoder{
		H:    -1,
		W:    -1,
		maxH: h,
		maxW: w,
		padH: 10,
		padW: 10,

		Drawer: font.Drawer{
			Src: image.Black,
		},
		out: &gif.GIF{LoopCount: -1},
	}
}

// Frames returns the number of frames rendered so far.
func (enc *Encoder) Frames() int { return len(enc.out.Image) }

// render draws the cells as three lines of text.
func render(cells [game.Cells]game.Mark) string {
	var buf strings.Builder
	for i, m := range cells {
		fmt.Fprintf(&buf, "%s", m)
		switch {
		case i == len(cells)-1:
		case (i+1)%3 == 0:
			buf.WriteByte('\n')
		default:
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}

// Encode renders the board after the last move of the episode.
func (enc *Encoder) Encode(ms game.MetaState) error {
	episode := ms.Episode()
	if enc.Every > 1 && episode%enc.Every != 0 {
		return nil
	}
	gameName := ms.Name()
	lastMove := ms.LastMove()
	result := ms.Result()
	repr := render(ms.Board())

	if !enc.initialized {
		// lazy init of specifications
		enc.face = truetype.NewFace(regular, &truetype.Options{
			Size:    fontsize,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
		enc.Drawer.Src = image.Black
		enc.Drawer.Face = enc.face

		// first calculate how long the max length will be
		splits := strings.Split(repr, "\n")
		oneline := splits[0]
		maxW := max(font.MeasureString(enc.Face, oneline).Ceil(), font.MeasureString(enc.Face, dummyLongString).Ceil())
		dy := int(math.Ceil(fontsize * lineheight * dpi / 72))
		w := maxW + 2*enc.padW
		h := (len(splits)+4)*dy + 2*enc.padH // + 4 is for the baseline and the 3 extra lines: name, episode, and winner

		w = min(w, enc.maxW)
		h = min(h, enc.maxH)

		if w == enc.maxW {
			enc.padW = 0
		}
		if h == enc.maxH {
			enc.padH = 0
		}

		enc.H = h
		enc.W = w
		enc.initialized = true
	}

	x := 0
	y := 0

	bg := image.White
	im := image.NewPaletted(image.Rect(0, 0, enc.W, enc.H), globPalette)
	draw.Draw(im, im.Bounds(), bg, image.Point{}, draw.Src)
	dy := int(math.Ceil(fontsize * lineheight * dpi / 72))
	enc.Dot = fixed.Point26_6{
		X: fixed.I(x + enc.padW),
		Y: fixed.I(y + enc.padH),
	}
	y += dy
	text := strings.Split(repr, "\n")
	enc.Dst = im
	for _, s := range text {
		enc.Dot = fixed.P(0+enc.padW, y)
		enc.DrawString(s)
		y += dy
	}
	enc.Dot = fixed.P(0+enc.padW, y)
	enc.DrawString(gameName)
	y += dy

	enc.Dot = fixed.P(0+enc.padW, y)
	enc.DrawString(fmt.Sprintf("Episode %d, %v", episode, lastMove))
	y += dy

	delay := 50
	if result.Ended() {
		delay = 300
		enc.Dot = fixed.P(0+enc.padW, y)
		enc.DrawString(fmt.Sprintf("Winner: %v", result))
	}
	enc.out.Image = append(enc.out.Image, im)
	enc.out.Delay = append(enc.out.Delay, delay)
	return nil
}

// Flush writes the gif into the writer
func (enc *Encoder) Flush() error {
	if enc.Writer == nil {
		return errors.New("gif encoder has no writer")
	}
	if len(enc.out.Image) == 0 {
		return nil
	}
	return errors.WithStack(gif.EncodeAll(enc.Writer, enc.out))
}
