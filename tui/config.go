package tui

// Config is the chat screen configuration.
type Config struct {
	// ShowRobot starts with the robot panel visible.
	ShowRobot bool

	// RobotFPS is the robot animation frame rate. Zero uses robot.DefaultFPS.
	RobotFPS int

	// Theme overrides the styles detected from the terminal.
	Theme *Theme
}
