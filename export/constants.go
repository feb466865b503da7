package export

// Message-class flags. Each downstream target subscribes with a mask of
// these; a message is delivered when the target's mask covers its flag.
const (
	FlagPosition = 1
	FlagWarning  = 2
	FlagSummary  = 4
)
