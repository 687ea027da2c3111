// Package render draws the maze session over camera frames using GoCV.
package render

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchmaze/internal/game"
)

// filled is the OpenCV thickness value for solid shapes.
const filled = -1

// DefaultAlpha is the weight of the camera image where the overlay is drawn.
const DefaultAlpha = 0.1

// Palette holds the drawing colors.
type Palette struct {
	Wall   color.RGBA
	Player color.RGBA
	Goal   color.RGBA
	Lost   color.RGBA
	Won    color.RGBA
}

// DefaultPalette returns teal walls, a red player and a green goal.
func DefaultPalette() Palette {
	return Palette{
		Wall:   color.RGBA{R: 5, G: 204, B: 210, A: 255},
		Player: color.RGBA{R: 255, G: 0, B: 0, A: 255},
		Goal:   color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Lost:   color.RGBA{R: 255, G: 0, B: 0, A: 255},
		Won:    color.RGBA{R: 0, G: 255, B: 0, A: 255},
	}
}

// Banner texts shown in terminal states.
const (
	LostBanner = "GAME OVER! Press 'R' to Restart"
	WonBanner  = "YOU WIN! Press 'R' to Restart"
)

// Renderer composes a session snapshot onto camera frames.
//
// Walls and banners are drawn on a separate canvas that is blended into the
// frame wherever the canvas is non-black; the player and goal are drawn
// directly onto the frame.
type Renderer struct {
	palette Palette
	alpha   float64
}

// New creates a Renderer. An alpha outside [0, 1] selects DefaultAlpha.
func New(palette Palette, alpha float64) *Renderer {
	if alpha < 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &Renderer{palette: palette, alpha: alpha}
}

// Draw renders snap onto img in place.
func (r *Renderer) Draw(img *gocv.Mat, snap game.Snapshot) {
	if img == nil || img.Empty() {
		return
	}

	canvas := gocv.Zeros(img.Rows(), img.Cols(), img.Type())
	defer canvas.Close()

	for _, o := range snap.Obstacles {
		gocv.Rectangle(&canvas, obstacleRect(o), r.palette.Wall, filled)
	}

	gocv.Circle(img, toImagePoint(snap.Player.Position), int(math.Round(snap.Player.Radius)), r.palette.Player, filled)
	gocv.Circle(img, toImagePoint(snap.Goal.Center), int(math.Round(snap.Goal.Radius)), r.palette.Goal, filled)

	switch snap.Status {
	case game.StatusLost:
		gocv.PutText(&canvas, LostBanner, image.Pt(350, 350), gocv.FontHersheySimplex, 1.5, r.palette.Lost, 5)
	case game.StatusWon:
		gocv.PutText(&canvas, WonBanner, image.Pt(400, 350), gocv.FontHersheySimplex, 1.5, r.palette.Won, 5)
	}

	r.blend(img, canvas)
}

// blend mixes canvas into img only where canvas has content.
func (r *Renderer) blend(img *gocv.Mat, canvas gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(canvas, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinary)

	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(*img, r.alpha, canvas, 1-r.alpha, 0, &blended)

	blended.CopyToWithMask(img, mask)
}

// obstacleRect converts an obstacle to pixel bounds.
func obstacleRect(o game.Obstacle) image.Rectangle {
	lo, hi := o.Bounds()
	return image.Rect(
		int(math.Round(lo.X)), int(math.Round(lo.Y)),
		int(math.Round(hi.X)), int(math.Round(hi.Y)),
	)
}

func toImagePoint(p game.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}
