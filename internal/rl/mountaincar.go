package rl

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
)

// mountainCar implements the classic under-powered car task: the car must
// rock back and forth to build enough momentum to reach the right hill.
type mountainCar struct {
	rng      *rand.Rand
	position float64
	velocity float64
	steps    int
	maxSteps int
	done     bool
}

const (
	carMinPosition  = -1.2
	carMaxPosition  = 0.6
	carMaxSpeed     = 0.07
	carGoalPosition = 0.5
	carForce        = 0.001
	carGravity      = 0.0025
	carMaxSteps     = 200
)

func newMountainCar(seed int64, kwargs map[string]any) (Env, error) {
	return &mountainCar{
		rng:      rand.New(rand.NewSource(seed)),
		maxSteps: kwargInt(kwargs, "max_episode_steps", carMaxSteps),
	}, nil
}

func (e *mountainCar) Reset() []float64 {
	e.position = e.rng.Float64()*0.2 - 0.6
	e.velocity = 0
	e.steps = 0
	e.done = false
	return e.obs()
}

func (e *mountainCar) Step(action int) ([]float64, float64, bool) {
	if e.done {
		return e.obs(), 0, true
	}

	e.velocity += float64(action-1)*carForce - math.Cos(3*e.position)*carGravity
	e.velocity = clamp(e.velocity, -carMaxSpeed, carMaxSpeed)
	e.position = clamp(e.position+e.velocity, carMinPosition, carMaxPosition)
	if e.position == carMinPosition && e.velocity < 0 {
		e.velocity = 0
	}
	e.steps++

	e.done = e.position >= carGoalPosition || e.steps >= e.maxSteps
	return e.obs(), -1.0, e.done
}

func (e *mountainCar) obs() []float64 {
	return []float64{e.position, e.velocity}
}

func (e *mountainCar) ObsSize() int    { return 2 }
func (e *mountainCar) NumActions() int { return 3 }
func (e *mountainCar) Close() error    { return nil }

func (e *mountainCar) RenderRGB() *image.RGBA {
	const width, height = 400, 300
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	// Hill profile: sin(3x), mapped into the viewport.
	toScreen := func(pos float64) (int, int) {
		x := int((pos - carMinPosition) / (carMaxPosition - carMinPosition) * float64(width))
		y := height - 60 - int(math.Sin(3*pos)*80)
		return x, y
	}
	for px := 0; px < width; px++ {
		pos := carMinPosition + float64(px)/float64(width)*(carMaxPosition-carMinPosition)
		_, py := toScreen(pos)
		img.Set(px, py, color.Black)
	}

	carX, carY := toScreen(e.position)
	fillRect(img, carX-8, carY-14, carX+8, carY-2, color.RGBA{40, 40, 160, 255})

	return img
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
