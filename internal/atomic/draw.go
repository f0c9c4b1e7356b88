package atomic

// DrawKind tags a DrawCommand.
type DrawKind uint8

const (
	// DrawLink is a stroked line segment between two particle rims.
	DrawLink DrawKind = iota
	// DrawAtom is a filled and stroked disc.
	DrawAtom
)

func (k DrawKind) String() string {
	switch k {
	case DrawLink:
		return "link"
	case DrawAtom:
		return "atom"
	default:
		return "unknown"
	}
}

// DrawCommand is one abstract render primitive emitted by Step.
//
// Links use From/To. Atoms use Center/Radius.
type DrawCommand struct {
	Kind   DrawKind
	From   Vec2
	To     Vec2
	Center Vec2
	Radius float64
	Color  RGBA
}

// Surface is the drawing target a frame driver replays commands onto.
type Surface interface {
	Line(from, to Vec2, c RGBA)
	Disc(center Vec2, radius float64, c RGBA)
}

// Replay executes cmds on s in order.
func Replay(cmds []DrawCommand, s Surface) {
	for i := range cmds {
		cmd := &cmds[i]
		switch cmd.Kind {
		case DrawLink:
			s.Line(cmd.From, cmd.To, cmd.Color)
		case DrawAtom:
			s.Disc(cmd.Center, cmd.Radius, cmd.Color)
		}
	}
}
