package rl

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
)

// cartPole implements the classic cart-pole balancing task: a pole is
// attached to a cart moving along a frictionless track, and the agent
// pushes the cart left or right to keep the pole upright.
type cartPole struct {
	rng      *rand.Rand
	state    [4]float64 // x, xDot, theta, thetaDot
	steps    int
	maxSteps int
	done     bool
}

const (
	cartGravity      = 9.8
	cartMass         = 1.0
	poleMass         = 0.1
	poleHalfLength   = 0.5
	cartForceMag     = 10.0
	cartTau          = 0.02
	cartXThreshold   = 2.4
	poleThetaLimit   = 12 * 2 * math.Pi / 360
	cartPoleMaxSteps = 500
)

func newCartPole(seed int64, kwargs map[string]any) (Env, error) {
	return &cartPole{
		rng:      rand.New(rand.NewSource(seed)),
		maxSteps: kwargInt(kwargs, "max_episode_steps", cartPoleMaxSteps),
	}, nil
}

func (e *cartPole) Reset() []float64 {
	for i := range e.state {
		e.state[i] = e.rng.Float64()*0.1 - 0.05
	}
	e.steps = 0
	e.done = false
	return e.obs()
}

func (e *cartPole) Step(action int) ([]float64, float64, bool) {
	if e.done {
		return e.obs(), 0, true
	}

	force := cartForceMag
	if action == 0 {
		force = -cartForceMag
	}

	x, xDot, theta, thetaDot := e.state[0], e.state[1], e.state[2], e.state[3]
	cosTheta, sinTheta := math.Cos(theta), math.Sin(theta)

	totalMass := cartMass + poleMass
	poleMassLength := poleMass * poleHalfLength

	temp := (force + poleMassLength*thetaDot*thetaDot*sinTheta) / totalMass
	thetaAcc := (cartGravity*sinTheta - cosTheta*temp) /
		(poleHalfLength * (4.0/3.0 - poleMass*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosTheta/totalMass

	e.state[0] = x + cartTau*xDot
	e.state[1] = xDot + cartTau*xAcc
	e.state[2] = theta + cartTau*thetaDot
	e.state[3] = thetaDot + cartTau*thetaAcc
	e.steps++

	e.done = e.state[0] < -cartXThreshold || e.state[0] > cartXThreshold ||
		e.state[2] < -poleThetaLimit || e.state[2] > poleThetaLimit ||
		e.steps >= e.maxSteps

	return e.obs(), 1.0, e.done
}

func (e *cartPole) obs() []float64 {
	obs := make([]float64, 4)
	copy(obs, e.state[:])
	return obs
}

func (e *cartPole) ObsSize() int    { return 4 }
func (e *cartPole) NumActions() int { return 2 }
func (e *cartPole) Close() error    { return nil }

func (e *cartPole) RenderRGB() *image.RGBA {
	const width, height = 400, 300
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	trackY := 220
	for x := 0; x < width; x++ {
		img.Set(x, trackY, color.Black)
	}

	scale := float64(width) / (2 * cartXThreshold)
	cartX := int(e.state[0]*scale) + width/2
	fillRect(img, cartX-20, trackY-15, cartX+20, trackY, color.RGBA{50, 50, 50, 255})

	poleLen := 80.0
	tipX := cartX + int(poleLen*math.Sin(e.state[2]))
	tipY := trackY - 15 - int(poleLen*math.Cos(e.state[2]))
	drawLine(img, cartX, trackY-15, tipX, tipY, color.RGBA{200, 130, 60, 255})

	return img
}
