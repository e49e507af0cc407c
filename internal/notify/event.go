package notify

// Level indicates the severity/type of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event represents a scan progress update.
type Event struct {
	Message string
	Level   Level
}
