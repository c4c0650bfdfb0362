// Package physics advances a single car's state by one fixed tick using a
// two-axle bicycle model: exponential input smoothing, longitudinal load
// transfer between the axles, a saturating lateral tire curve, and
// semi-implicit Euler integration. Every function is a pure value
// transformation; there is no clock, no randomness, and no allocation in
// the stepping path.
package physics

import (
	"math"

	"slipstream/internal/geom"
	"slipstream/internal/shared/types"
)

const (
	// Mass and geometry. CGFront/CGRear are the distances from the
	// center of gravity to the front and rear axles; they sum to the
	// wheelbase.
	Mass      = 1200.0
	Wheelbase = 42.0
	CGFront   = 20.0
	CGRear    = 22.0
	CGHeight  = 5.0
	// Gravity sets the static axle loads in world units.
	Gravity = 30.0
	// YawInertia resists yaw acceleration from the tire force couple.
	YawInertia = 160000.0
	YawDamping = 1.5

	// Longitudinal force model.
	EngineForce       = 54000.0
	BrakeForce        = 90000.0
	DragCoefficient   = 1.7
	RollingResistance = 30.0
	MaxSpeed          = 170.0

	// Saturating lateral tire curve parameters. The peak sits near
	// 0.11 rad of slip; past it the curve falls off, which is what
	// makes the car break away progressively instead of on a branch.
	TireMu   = 2.2
	PacejkaB = 10.0
	PacejkaC = 1.9

	// Steering. Authority falls off continuously with speed: the
	// smoothed steer value is divided by (1 + speed*SteerSpeedFactor)
	// before scaling by the maximum angle.
	MaxSteerAngle    = 0.45
	SteerSpeedFactor = 0.02

	// Input smoothing rates, per second. Brake reacts fastest, steering
	// slowest.
	SteerSmoothRate    = 6.0
	ThrottleSmoothRate = 10.0
	BrakeSmoothRate    = 14.0

	// MinSlipSpeed guards the slip-angle denominator as the car
	// approaches rest.
	MinSlipSpeed = 0.5
)

// SmoothInput decays the previous smoothed input toward the raw input at
// per-channel rates and derives the speed-attenuated steering angle. Raw
// values are clamped here, which is what makes the step contract total
// for out-of-range input.
func SmoothInput(prev types.SmoothedInput, raw types.Input, speed, dt float64) types.SmoothedInput {
	steer := geom.Clamp(raw.Steer, -1, 1)
	throttle := geom.Clamp(raw.Throttle, 0, 1)
	brake := geom.Clamp(raw.Brake, 0, 1)

	out := types.SmoothedInput{
		Steer:    geom.Lerp(prev.Steer, steer, 1-math.Exp(-SteerSmoothRate*dt)),
		Throttle: geom.Lerp(prev.Throttle, throttle, 1-math.Exp(-ThrottleSmoothRate*dt)),
		Brake:    geom.Lerp(prev.Brake, brake, 1-math.Exp(-BrakeSmoothRate*dt)),
	}
	out.SteerAngle = out.Steer * MaxSteerAngle / (1 + math.Abs(speed)*SteerSpeedFactor)
	return out
}

// TireForce returns the lateral force produced by one axle at the given
// slip angle, vertical load, and surface grip multiplier. The curve is
// antisymmetric in slip, zero at zero slip, rises to a single peak, and
// saturates and falls past it. Force scales linearly with load and grip.
func TireForce(slipAngle, load, grip float64) float64 {
	return -TireMu * grip * load * math.Sin(PacejkaC*math.Atan(PacejkaB*slipAngle))
}

// axleLoads splits the car's weight between the axles: the static split by
// center-of-gravity position plus the transfer caused by the previous
// tick's longitudinal acceleration. The two loads always sum to the static
// weight regardless of the acceleration sign.
func axleLoads(prevAccel float64) (front, rear float64) {
	transfer := CGHeight * Mass * prevAccel / Wheelbase
	front = Mass*Gravity*CGRear/Wheelbase - transfer
	rear = Mass*Gravity*CGFront/Wheelbase + transfer
	return front, rear
}

// StepCar advances the car by one fixed tick. The surface tag is supplied
// by the caller (the world step classifies it) and is carried through to
// the returned state together with the realized longitudinal acceleration,
// which feeds the next tick's load transfer.
func StepCar(car types.CarState, input types.Input, surface types.Surface, dt float64) types.CarState {
	in := SmoothInput(car.PrevInput, input, car.Speed, dt)
	grip := surface.GripMultiplier()

	sinH, cosH := math.Sincos(car.Heading)
	forward := types.Vec2{X: cosH, Y: sinH}
	left := types.Vec2{X: -sinH, Y: cosH}
	vLong := car.Velocity.Dot(forward)
	vLat := car.Velocity.Dot(left)

	loadFront, loadRear := axleLoads(car.AccelLongitudinal)

	guarded := math.Max(math.Abs(vLong), MinSlipSpeed)
	slipFront := math.Atan2(vLat+car.YawRate*CGFront, guarded) - in.SteerAngle
	slipRear := math.Atan2(vLat-car.YawRate*CGRear, guarded)

	forceFront := TireForce(slipFront, loadFront, grip)
	forceRear := TireForce(slipRear, loadRear, grip)

	drive := in.Throttle * EngineForce
	brakeMag := in.Brake * BrakeForce
	brake := 0.0
	switch {
	case vLong > 0:
		brake = -brakeMag
	case vLong < 0:
		brake = brakeMag
	}
	drag := -DragCoefficient * vLong * math.Abs(vLong)
	roll := -RollingResistance * vLong

	accelLong := (drive + brake + drag + roll) / Mass
	accelLat := (forceFront + forceRear) / Mass
	yawAccel := (forceFront*CGFront - forceRear*CGRear) / YawInertia

	// Semi-implicit Euler in the body frame, with the rotating-frame
	// coupling terms.
	prevVLong := vLong
	vLong += (accelLong + car.YawRate*vLat) * dt
	if prevVLong*vLong < 0 && brakeMag > drive {
		// Brakes hold a near-stopped car instead of reversing it.
		vLong = 0
	}
	vLat += (accelLat - car.YawRate*vLong) * dt

	yawRate := (car.YawRate + yawAccel*dt) / (1 + YawDamping*dt)
	heading := geom.WrapAngle(car.Heading + yawRate*dt)

	sinH, cosH = math.Sincos(heading)
	forward = types.Vec2{X: cosH, Y: sinH}
	left = types.Vec2{X: -sinH, Y: cosH}
	velocity := forward.Scale(vLong).Add(left.Scale(vLat))

	speed := velocity.Length()
	if speed > MaxSpeed {
		velocity = velocity.Scale(MaxSpeed / speed)
		speed = MaxSpeed
	}

	return types.CarState{
		Position:          car.Position.Add(velocity.Scale(dt)),
		Velocity:          velocity,
		Heading:           heading,
		YawRate:           yawRate,
		Speed:             speed,
		PrevInput:         in,
		Surface:           surface,
		AccelLongitudinal: accelLong,
	}
}
