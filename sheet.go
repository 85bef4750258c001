package imgfilter

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/imgfilter/imageutil"
)

// SheetOptions controls contact sheet layout.
type SheetOptions struct {
	TileWidth  int     // each stage is scaled to this width
	Columns    int     // tiles per row
	Padding    int     // space around tiles, in pixels
	FontSize   float64 // caption size in points at 72 DPI
	Background color.Color
	Foreground color.Color
}

// DefaultSheetOptions returns 256 pixel tiles, four per row, with
// black captions on white.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{
		TileWidth:  256,
		Columns:    4,
		Padding:    8,
		FontSize:   12,
		Background: color.White,
		Foreground: color.Black,
	}
}

// captionHeight is the height reserved below each tile for its label.
func (o SheetOptions) captionHeight() int {
	return int(o.FontSize*1.5 + 0.5)
}

// sheetLayout holds the computed geometry of a contact sheet.
type sheetLayout struct {
	columns, rows int
	cellW, cellH  int // tile plus caption, without padding
	width, height int
}

func computeLayout(n, tileHeight int, opts SheetOptions) sheetLayout {
	columns := min(max(opts.Columns, 1), n)
	rows := (n + columns - 1) / columns
	l := sheetLayout{
		columns: columns,
		rows:    rows,
		cellW:   opts.TileWidth,
		cellH:   tileHeight + opts.captionHeight(),
	}
	l.width = opts.Padding + columns*(l.cellW+opts.Padding)
	l.height = opts.Padding + rows*(l.cellH+opts.Padding)
	return l
}

// cellOrigin returns the top-left corner of the i-th tile.
func (l sheetLayout) cellOrigin(i, padding int) image.Point {
	col, row := i%l.columns, i/l.columns
	return image.Pt(padding+col*(l.cellW+padding), padding+row*(l.cellH+padding))
}

var captionFont = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(goregular.TTF)
})

// RenderContactSheet lays the stages out in a grid, each scaled to the
// tile width and captioned with its label. The sheet is an RGB buffer.
func RenderContactSheet(stages []Stage, opts SheetOptions) (*imageutil.PixelBuffer, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", imageutil.ErrInvalidParameter)
	}
	if opts.TileWidth <= 0 || opts.FontSize <= 0 || opts.Padding < 0 {
		return nil, fmt.Errorf("%w: sheet options %+v", imageutil.ErrInvalidParameter, opts)
	}

	tiles := make([]image.Image, len(stages))
	tileHeight := 0
	for i, s := range stages {
		scaled, err := imageutil.ResizeToWidth(s.Image, opts.TileWidth, imageutil.InterpolationArea)
		if err != nil {
			return nil, err
		}
		tiles[i] = imageutil.ToImage(scaled)
		tileHeight = max(tileHeight, scaled.Height())
	}

	layout := computeLayout(len(stages), tileHeight, opts)
	canvas := image.NewRGBA(image.Rect(0, 0, layout.width, layout.height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	ttf, err := captionFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption font: %w", err)
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(opts.FontSize)
	ctx.SetClip(canvas.Bounds())
	ctx.SetDst(canvas)
	ctx.SetSrc(image.NewUniform(opts.Foreground))
	ctx.SetHinting(font.HintingFull)

	for i, tile := range tiles {
		origin := layout.cellOrigin(i, opts.Padding)
		r := tile.Bounds().Sub(tile.Bounds().Min).Add(origin)
		// Tiles with alpha are composited over the background.
		draw.Draw(canvas, r, tile, tile.Bounds().Min, draw.Over)

		baseline := origin.Y + tileHeight + int(opts.FontSize+0.5)
		if _, err := ctx.DrawString(stages[i].Label, freetype.Pt(origin.X, baseline)); err != nil {
			return nil, fmt.Errorf("failed to draw caption %q: %w", stages[i].Label, err)
		}
	}

	return imageutil.FromImageChannels(canvas, imageutil.RGB), nil
}
