package fx

import (
	"math"
	"math/rand"

	"github.com/fogleman/gg"
)

// maxParticles caps the live pool. The trickle spawner never exceeds it.
const maxParticles = 50

type particle struct {
	x, y   float64 // pixels
	vx, vy float64 // pixels/second
	size   float64
	angle  float64
	spin   float64
	life   float64 // seconds remaining
	alpha  float64
	kind   string
}

// ParticleSystem owns the per-scene emitter pool. Spawning is frame-rate
// independent (budget accumulated from dt) and integration is plain
// velocity per frame. While playback is paused the system is simply not
// updated; Render keeps drawing the last state.
type ParticleSystem struct {
	width  int
	height int
	pool   []*particle
	budget float64
	rng    *rand.Rand
}

func NewParticleSystem(width, height int) *ParticleSystem {
	return &ParticleSystem{
		width:  width,
		height: height,
		rng:    rand.New(rand.NewSource(42)),
	}
}

// Reset clears the pool, called at scene boundaries.
func (ps *ParticleSystem) Reset() {
	ps.pool = ps.pool[:0]
	ps.budget = 0
}

// Update spawns and integrates particles for the given emitter mode.
func (ps *ParticleSystem) Update(mode string, dt float64) {
	if mode == "" || mode == "none" {
		ps.pool = ps.pool[:0]
		return
	}

	ps.budget += spawnRate(mode) * dt
	for ps.budget >= 1 && len(ps.pool) < maxParticles {
		ps.pool = append(ps.pool, ps.spawn(mode))
		ps.budget--
	}
	if ps.budget > 1 {
		ps.budget = 1 // cap backlog so a long stall doesn't burst-spawn
	}

	alive := ps.pool[:0]
	for _, p := range ps.pool {
		p.x += p.vx * dt
		p.y += p.vy * dt
		p.angle += p.spin * dt
		p.life -= dt

		if p.life <= 0 || ps.offscreen(p) {
			continue
		}
		alive = append(alive, p)
	}
	ps.pool = alive
}

func (ps *ParticleSystem) offscreen(p *particle) bool {
	m := p.size * 4
	return p.x < -m || p.x > float64(ps.width)+m || p.y < -m || p.y > float64(ps.height)+m
}

func spawnRate(mode string) float64 {
	switch mode {
	case "rain":
		return 18
	case "snow":
		return 8
	case "embers":
		return 6
	default: // emoji-sprite trickles
		return 4
	}
}

func (ps *ParticleSystem) spawn(mode string) *particle {
	w := float64(ps.width)
	h := float64(ps.height)
	r := ps.rng

	p := &particle{kind: mode, alpha: 0.7 + r.Float64()*0.3}
	switch mode {
	case "snow":
		p.x, p.y = r.Float64()*w, -10
		p.vx, p.vy = (r.Float64()-0.5)*30, 40+r.Float64()*40
		p.size = 2 + r.Float64()*3
		p.life = 30
	case "rain":
		p.x, p.y = r.Float64()*w, -20
		p.vx, p.vy = -60, 700+r.Float64()*300
		p.size = 8 + r.Float64()*10
		p.life = 10
	case "embers":
		p.x, p.y = r.Float64()*w, h+10
		p.vx, p.vy = (r.Float64()-0.5)*40, -(60 + r.Float64()*80)
		p.size = 1.5 + r.Float64()*2.5
		p.life = 3 + r.Float64()*3
	default: // hearts, likes, money, stars, music
		p.x, p.y = r.Float64()*w, h+20
		p.vx, p.vy = (r.Float64()-0.5)*50, -(70 + r.Float64()*60)
		p.size = 12 + r.Float64()*14
		p.spin = (r.Float64() - 0.5) * 2
		p.life = 4 + r.Float64()*4
	}
	return p
}

// Render draws the current pool. Safe to call while paused.
func (ps *ParticleSystem) Render(dc *gg.Context) {
	for _, p := range ps.pool {
		fade := p.alpha
		if p.life < 1 {
			fade *= p.life
		}

		switch p.kind {
		case "snow":
			dc.SetRGBA(1, 1, 1, fade)
			dc.DrawCircle(p.x, p.y, p.size)
			dc.Fill()
		case "rain":
			dc.SetRGBA(0.6, 0.7, 0.9, fade*0.6)
			dc.SetLineWidth(1.2)
			dc.DrawLine(p.x, p.y, p.x+p.vx*0.02, p.y+p.vy*0.02)
			dc.Stroke()
		case "embers":
			dc.SetRGBA(1, 0.45+0.3*math.Sin(p.angle), 0.1, fade)
			dc.DrawCircle(p.x, p.y, p.size)
			dc.Fill()
		case "hearts":
			ps.drawHeart(dc, p, fade)
		case "stars":
			ps.drawStar(dc, p, fade)
		case "likes":
			ps.drawGlyph(dc, p, "+1", 0.3, 0.7, 1, fade)
		case "money":
			ps.drawGlyph(dc, p, "$", 0.4, 0.85, 0.35, fade)
		case "music":
			ps.drawGlyph(dc, p, "♪", 0.85, 0.75, 1, fade)
		}
	}
}

func (ps *ParticleSystem) drawHeart(dc *gg.Context, p *particle, fade float64) {
	s := p.size / 2
	dc.Push()
	dc.RotateAbout(p.angle*0.3, p.x, p.y)
	dc.SetRGBA(1, 0.25, 0.4, fade)
	dc.DrawCircle(p.x-s/2, p.y-s/4, s/2)
	dc.DrawCircle(p.x+s/2, p.y-s/4, s/2)
	dc.MoveTo(p.x-s, p.y-s/4+s*0.18)
	dc.LineTo(p.x, p.y+s)
	dc.LineTo(p.x+s, p.y-s/4+s*0.18)
	dc.ClosePath()
	dc.Fill()
	dc.Pop()
}

func (ps *ParticleSystem) drawStar(dc *gg.Context, p *particle, fade float64) {
	dc.Push()
	dc.SetRGBA(1, 0.85, 0.2, fade)
	outer := p.size / 2
	inner := outer * 0.45
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := p.angle + float64(i)*math.Pi/5 - math.Pi/2
		x := p.x + math.Cos(a)*r
		y := p.y + math.Sin(a)*r
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.Fill()
	dc.Pop()
}

func (ps *ParticleSystem) drawGlyph(dc *gg.Context, p *particle, glyph string, r, g, b, fade float64) {
	dc.SetRGBA(r, g, b, fade)
	dc.DrawStringAnchored(glyph, p.x, p.y, 0.5, 0.5)
}

// Count returns the live particle count, exercised by tests and stats.
func (ps *ParticleSystem) Count() int {
	return len(ps.pool)
}
