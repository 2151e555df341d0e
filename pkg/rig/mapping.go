package rig

// Full-scale stick deflection reported by the input device.
const axisMax = 32767

// JoystickToAngle maps a raw stick value (-32767 to 32767) onto the
// servo range (0 to 180 degrees), with the stick centre at 90.
func JoystickToAngle(value int32) int {
	if value < -axisMax {
		value = -axisMax
	} else if value > axisMax {
		value = axisMax
	}
	return int((int64(value) + axisMax) * MaxAngle / (2 * axisMax))
}

// TriggerToAngle maps a trigger value (0 to max) onto the servo range.
// A rising trigger sweeps 0 to 180; a falling one 180 to 0, so the left
// and right triggers can pull all servos toward opposite end stops.
func TriggerToAngle(value, max int32, rising bool) int {
	if max <= 0 {
		return CentreAngle
	}
	if value < 0 {
		value = 0
	} else if value > max {
		value = max
	}
	angle := int(int64(value) * MaxAngle / int64(max))
	if !rising {
		angle = MaxAngle - angle
	}
	return angle
}

func clampAngle(angle int) int {
	if angle < MinAngle {
		return MinAngle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}
