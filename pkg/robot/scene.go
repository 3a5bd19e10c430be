package robot

import "math"

// Brushes used by the scene.
var (
	shadowBrush   = Brush{Glyph: '░', Paint: Shadow}
	glowBrush     = Brush{Glyph: '·', Paint: Glow}
	bodyBrush     = Brush{Glyph: '█', Paint: Fill}
	outlineBrush  = Brush{Glyph: '█', Paint: Outline}
	eyeBrush      = Brush{Glyph: '●', Paint: Screen}
	antennaBrush  = Brush{Glyph: '│', Paint: Outline}
	tipBrush      = Brush{Glyph: '◆', Paint: Particle}
	screenBrush   = Brush{Glyph: '▓', Paint: Screen}
	scanBrush     = Brush{Glyph: '─', Paint: Particle}
	armBrush      = Brush{Glyph: '▒', Paint: Outline}
	particleBrush = Brush{Glyph: '✦', Paint: Particle}
)

// Scene is the floating robot. CenterX and CenterY locate it in logical
// coordinates.
type Scene struct {
	CenterX float64
	CenterY float64
}

// DefaultScene centers the robot on the canvas.
func DefaultScene() Scene {
	return Scene{CenterX: Size / 2, CenterY: Size / 2}
}

// Float is the vertical bob of the whole robot at phase t.
func Float(t float64) float64 {
	return math.Sin(t) * 10
}

// ParticleAngle is the orbit angle of particle i at phase t.
func ParticleAngle(t float64, i int) float64 {
	return t*2 + float64(i)*(math.Pi*2/3)
}

// Draw clears c and paints the scene at phase t. The result depends on t only.
func (s Scene) Draw(c *Canvas, t float64) {
	c.Clear()

	cx, cy := s.CenterX, s.CenterY
	f := Float(t)

	c.Ellipse(cx, cy+120, 80, 20, shadowBrush, Brush{})
	c.Circle(cx, cy+f, 120, glowBrush, Brush{})

	// Head and eyes.
	c.Circle(cx, cy-30+f, 60, bodyBrush, outlineBrush)
	c.Circle(cx-20, cy-35+f, 8, eyeBrush, Brush{})
	c.Circle(cx+20, cy-35+f, 8, eyeBrush, Brush{})

	// Antenna.
	c.Line(cx, cy-90+f, cx, cy-70+f, antennaBrush)
	c.Circle(cx, cy-90+f, 5, tipBrush, Brush{})

	// Body with its screen and scan lines.
	c.Rect(cx-50, cy+30+f, 100, 80, bodyBrush, outlineBrush)
	c.Rect(cx-35, cy+45+f, 70, 40, screenBrush, Brush{})
	for i := range 3 {
		y := cy + 55 + float64(i)*10 + f
		c.Line(cx-30, y, cx+30, y, scanBrush)
	}

	// Arms wave in opposite directions.
	wave := math.Sin(t*2) * 5
	c.Line(cx-50, cy+50+f, cx-80, cy+70+f+wave, armBrush)
	c.Line(cx+50, cy+50+f, cx+80, cy+70+f-wave, armBrush)

	for i := range 3 {
		angle := ParticleAngle(t, i)
		px := cx + math.Cos(angle)*100
		py := cy + math.Sin(angle)*100 + f
		c.Circle(px, py, 3, particleBrush, Brush{})
	}
}
