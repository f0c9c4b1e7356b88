package atomic

import "math"

// Vec2 is a 2D vector in world coordinates.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64         { return math.Sqrt(v.X*v.X + v.Y*v.Y) }
func (v Vec2) Angle() float64       { return math.Atan2(v.Y, v.X) }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }

func polar(r, theta float64) Vec2 {
	return Vec2{r * math.Cos(theta), r * math.Sin(theta)}
}

// Particle is the physical state of one atom. Identity is its index in
// the owning World.
type Particle struct {
	Pos Vec2
	Vel Vec2

	// Accel is the signed burst acceleration along the velocity heading.
	Accel float64
	// Accelerating is true while the particle is in the burst state.
	Accelerating bool
}

// Contact describes a collision as seen from one particle.
type Contact struct {
	// Offset is the contact point relative to this particle's center,
	// radius long, pointing at the partner.
	Offset Vec2
	// PartnerVel is the partner's velocity at the time of the test.
	PartnerVel Vec2
}

// Link is the rim-to-rim segment between two linked particles.
type Link struct {
	From, To Vec2
	Distance float64
}

func (p *Particle) DistanceTo(o *Particle) float64 {
	return o.Pos.Sub(p.Pos).Len()
}

func (p *Particle) Speed() float64 {
	return p.Vel.Len()
}

// bearing returns the angle from p to o. Coincident centers have no
// defined angle; they resolve to 0, the +x direction.
func (p *Particle) bearing(o *Particle) float64 {
	rel := o.Pos.Sub(p.Pos)
	if rel.IsZero() {
		return 0
	}
	return rel.Angle()
}

// Contact reports whether p and o touch (center distance <= 2*radius).
func (p *Particle) Contact(o *Particle, radius float64) (Contact, bool) {
	if p.DistanceTo(o) > 2*radius {
		return Contact{}, false
	}
	return Contact{
		Offset:     polar(radius, p.bearing(o)),
		PartnerVel: o.Vel,
	}, true
}

// LinkTo returns the link segment from p to o when they are within
// linkDistance. Endpoints sit on each particle's rim.
func (p *Particle) LinkTo(o *Particle, radius, linkDistance float64) (Link, bool) {
	d := p.DistanceTo(o)
	if d > linkDistance {
		return Link{}, false
	}
	rim := polar(radius, p.bearing(o))
	return Link{
		From:     p.Pos.Add(rim),
		To:       o.Pos.Sub(rim),
		Distance: d,
	}, true
}
